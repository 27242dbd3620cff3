package tracker

import (
	"context"

	"pricewatch-backend/services/tracker/db"
)

// the initial set of tracked items. INSERT OR IGNORE keyed on the
// unique name makes seeding idempotent: rows an operator has since
// edited are never overwritten.
var seedItems = []db.CreateItemParams{
	{
		Name:     "USD",
		PageUrl:  "https://cbr.ru/currency_base/daily/",
		Pattern:  `<td[^>]*>\s*USD\s*</td>\s*<td[^>]*>.*?</td>\s*<td[^>]*>.*?</td>\s*<td[^>]*>([\d,]+)</td>`,
		Currency: "RUB",
	},
	{
		Name:     "EUR",
		PageUrl:  "https://cbr.ru/currency_base/daily/",
		Pattern:  `<td[^>]*>\s*EUR\s*</td>\s*<td[^>]*>.*?</td>\s*<td[^>]*>.*?</td>\s*<td[^>]*>([\d,]+)</td>`,
		Currency: "RUB",
	},
	{
		Name:     "BRENT",
		PageUrl:  "https://www.rbc.ru/quote/ticker/181206",
		Pattern:  `<span class="chart__info__sum">[\s\S]*?([\d\s]+,\d+)`,
		Currency: "USD",
	},
}

// Seed populates the item table on first startup.
func (s Service) Seed(ctx context.Context) error {
	for _, item := range seedItems {
		if err := s.qry.CreateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
