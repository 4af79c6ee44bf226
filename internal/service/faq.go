package service

import (
	"fmt"
	"strconv"
	"strings"

	"gearbox/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Price formatting follows the storefront's Indian-market presentation, so
// amounts group as 1,23,456 rather than 123,456.
var pricePrinter = message.NewPrinter(language.MustParse("en-IN"))

func currencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "INR", "":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return code + " "
	}
}

func formatPrice(amount float64, currency string) string {
	return currencySymbol(currency) + pricePrinter.Sprintf("%v", number.Decimal(amount))
}

func formatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

func ratingVerdict(rating float64) string {
	switch {
	case rating >= 4.5:
		return "highly recommended"
	case rating >= 4:
		return "recommended"
	default:
		return "decent"
	}
}

// GenerateFAQ derives the product FAQ section from a product record. It is a
// pure function: the same product always yields the same list, in the same
// order.
//
// The "worth buying" and "where to buy" entries are always emitted; "key
// features" only when the product has specifications, "pros and cons" only
// when at least one of the two lists is non-empty.
func GenerateFAQ(p domain.Product) []domain.FAQ {
	faqs := []domain.FAQ{worthBuyingFAQ(p)}

	if len(p.Specs) > 0 {
		faqs = append(faqs, keyFeaturesFAQ(p))
	}

	faqs = append(faqs, whereToBuyFAQ(p))

	if len(p.Pros) > 0 || len(p.Cons) > 0 {
		faqs = append(faqs, prosConsFAQ(p))
	}

	return faqs
}

func worthBuyingFAQ(p domain.Product) domain.FAQ {
	var b strings.Builder

	pros := p.Pros
	if len(pros) > 3 {
		pros = pros[:3]
	}
	cons := p.Cons
	if len(cons) > 2 {
		cons = cons[:2]
	}

	if len(pros) > 0 {
		fmt.Fprintf(&b, "Based on our testing, the %s offers %s. ", p.Title, strings.Join(pros, ", "))
	} else {
		fmt.Fprintf(&b, "Based on our testing, the %s holds up well for everyday use. ", p.Title)
	}
	if len(cons) > 0 {
		fmt.Fprintf(&b, "However, consider that it %s. ", strings.Join(cons, ", "))
	}
	fmt.Fprintf(&b, "With a rating of %s/5, it's %s for most users.",
		formatRating(p.Rating), ratingVerdict(p.Rating))

	return domain.FAQ{
		Question: fmt.Sprintf("Is the %s worth buying?", p.Title),
		Answer:   b.String(),
	}
}

func keyFeaturesFAQ(p domain.Product) domain.FAQ {
	specs := p.Specs
	if len(specs) > 4 {
		specs = specs[:4]
	}

	parts := make([]string, 0, len(specs))
	for _, s := range specs {
		parts = append(parts, s.Name+": "+s.Value)
	}

	return domain.FAQ{
		Question: fmt.Sprintf("What are the key features of %s?", p.Title),
		Answer:   fmt.Sprintf("The %s features %s.", p.Title, strings.Join(parts, ", ")),
	}
}

func whereToBuyFAQ(p domain.Product) domain.FAQ {
	answer := fmt.Sprintf("You can buy the %s through our partner retailer. Current price is %s",
		p.Title, formatPrice(p.Price, p.Currency))
	if p.OriginalPrice != nil {
		answer += fmt.Sprintf(" (down from %s)", formatPrice(*p.OriginalPrice, p.Currency))
	}
	answer += ". The retailer ships genuine products with full warranty."

	return domain.FAQ{
		Question: fmt.Sprintf("Where can I buy %s at the best price?", p.Title),
		Answer:   answer,
	}
}

func prosConsFAQ(p domain.Product) domain.FAQ {
	var parts []string
	if len(p.Pros) > 0 {
		parts = append(parts, "Pros: "+strings.Join(p.Pros, ", ")+".")
	}
	if len(p.Cons) > 0 {
		parts = append(parts, "Cons: "+strings.Join(p.Cons, ", ")+".")
	}
	parts = append(parts, fmt.Sprintf("Overall, it's rated %s/5 by users.", formatRating(p.Rating)))

	return domain.FAQ{
		Question: fmt.Sprintf("What are the pros and cons of %s?", p.Title),
		Answer:   strings.Join(parts, " "),
	}
}
