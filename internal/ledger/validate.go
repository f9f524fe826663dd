package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mistakia/finance-sub001/internal/model"
)

// Rules checked by Validate.
const (
	RuleType      = "type"
	RuleRooted    = "rooted"
	RuleDuplicate = "duplicate"
	RuleLeg       = "leg"
	RuleFee       = "fee"
	RuleAssertion = "assertion"
	RuleMovement  = "movement"
	RuleDate      = "date"
)

var legNames = [...]string{"from", "to", "fee"}

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule        string
	Link        string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.Link, e.Description)
}

// Validate checks a normalized batch before it is written. Every
// transaction link must live under /{owner}/ and be unique in the batch.
func Validate(txns []model.Transaction, owner string) []ValidationError {
	var errs []ValidationError
	add := func(rule, link, format string, args ...any) {
		errs = append(errs, ValidationError{Rule: rule, Link: link, Description: fmt.Sprintf(format, args...)})
	}

	root := "/" + owner + "/"
	seen := make(map[string]bool, len(txns))

	for _, t := range txns {
		if !t.Type.Valid() {
			add(RuleType, t.Link, "unknown transaction type %q", t.Type)
		}

		if owner == "" || !strings.HasPrefix(t.Link, root) {
			add(RuleRooted, t.Link, "link is not under %s", root)
		}

		if seen[t.Link] {
			add(RuleDuplicate, t.Link, "link appears more than once in batch")
		}
		seen[t.Link] = true

		if _, err := model.ParseDate(t.Date); err != nil {
			add(RuleDate, t.Link, "transaction_date %q is not YYYY-MM-DD", t.Date)
		}

		for i, l := range []*model.Leg{t.From, t.To, t.Fee} {
			if l == nil {
				continue
			}
			if l.Link == "" || l.Symbol == "" {
				add(RuleLeg, t.Link, "%s leg needs both link and symbol", legNames[i])
			}
		}

		if t.Fee != nil && t.Fee.Amount.IsNegative() {
			add(RuleFee, t.Link, "fee amount %s is negative", t.Fee.Amount)
		}

		if t.IsAssertion() {
			if t.To == nil {
				add(RuleAssertion, t.Link, "balance assertion has no destination leg")
			}
			continue
		}

		if t.From == nil && t.To == nil {
			add(RuleMovement, t.Link, "transaction has neither from nor to leg")
		}
	}
	return errs
}

// joinErrors folds validation errors into one error.
func joinErrors(verrs []ValidationError) error {
	errs := make([]error, len(verrs))
	for i, ve := range verrs {
		errs[i] = ve
	}
	return fmt.Errorf("validation failed: %w", errors.Join(errs...))
}
