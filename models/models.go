package models

import "github.com/shopspring/decimal"

func init() {
	// prices travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// All lists every model owned by the API, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&ArtisanProfile{},
		&ServiceOffering{},
		&PortfolioItem{},
		&Order{},
		&Message{},
		&Review{},
		&ReviewHelpfulVote{},
		&Notification{},
	}
}
