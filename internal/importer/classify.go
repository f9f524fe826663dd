package importer

import (
	"strings"

	"github.com/mistakia/finance-sub001/internal/model"
)

// keywordRule maps an action containing keyword to a transaction type.
type keywordRule struct {
	keyword string
	typ     model.TransactionType
}

// classifier applies keyword rules in order; the first match wins and
// anything unmatched is an exchange.
type classifier []keywordRule

func (c classifier) classify(action string) model.TransactionType {
	action = strings.ToLower(action)
	for _, r := range c {
		if strings.Contains(action, r.keyword) {
			return r.typ
		}
	}
	return model.TypeExchange
}

var schwabRules = classifier{
	{"dividend", model.TypeIncome},
	{"interest", model.TypeIncome},
	{"transfer", model.TypeTransfer},
	{"journal", model.TypeTransfer},
	{"fee", model.TypeFee},
}

var fidelityRules = classifier{
	{"dividend", model.TypeIncome},
	{"transfer", model.TypeTransfer},
	{"fee", model.TypeFee},
}

// tradeSide is the direction an action moves a position in.
type tradeSide int

const (
	sideNone tradeSide = iota
	sideBuy
	sideSell
)

// sideOf recognizes buy and sell actions: "Buy", "YOU BOUGHT", "Sell Short",
// "Shares Sold", IBKR's "BOT"/"SLD".
func sideOf(action string) tradeSide {
	a := strings.ToLower(strings.TrimSpace(action))
	switch {
	case a == "bot" || strings.Contains(a, "buy") || strings.Contains(a, "bought") || strings.Contains(a, "purchased"):
		return sideBuy
	case a == "sld" || strings.Contains(a, "sell") || strings.Contains(a, "sold"):
		return sideSell
	}
	return sideNone
}
