package dashboard

import (
	"fmt"
	"html/template"

	"github.com/muhammadarsalan100/ramik"
	"github.com/muhammadarsalan100/ramik/table"
)

func badge(class, text string) table.Cell {
	return table.Cell{
		Text: text,
		HTML: template.HTML(fmt.Sprintf(`<span class="badge %s">%s</span>`,
			template.HTMLEscapeString(class), template.HTMLEscapeString(text))),
	}
}

// UserColumns is the users screen.
func UserColumns() []table.Column[ramik.User] {
	return []table.Column[ramik.User]{
		table.Field("Name", func(u ramik.User) any { return u.Name }),
		table.Field("Email", func(u ramik.User) any { return u.Email }),
		table.Field("Role", func(u ramik.User) any { return u.Role }),
		table.Field("Region", func(u ramik.User) any {
			if u.Region == nil {
				return ""
			}
			return u.Region.Name
		}),
		table.Render("Status", func(u ramik.User) table.Cell {
			if u.Active {
				return badge("active", "Active")
			}
			return badge("inactive", "Inactive")
		}),
	}
}

// ProductColumns is the products screen.
func ProductColumns() []table.Column[ramik.Product] {
	return []table.Column[ramik.Product]{
		table.Field("ID", func(p ramik.Product) any { return p.ID }),
		table.Render("Title", func(p ramik.Product) table.Cell {
			if p.Title == nil || *p.Title == "" {
				return table.Text("Untitled")
			}
			return table.Text(*p.Title)
		}),
		table.Render("Price", func(p ramik.Product) table.Cell {
			return table.Text("$" + p.Price.StringFixed(2))
		}),
		table.Render("Discount", func(p ramik.Product) table.Cell {
			if !p.DiscountPercentage.IsPositive() {
				return table.Text("-")
			}
			return badge("discount", "-"+p.DiscountPercentage.String()+"%")
		}),
		table.Render("Stock", func(p ramik.Product) table.Cell {
			if p.InStock {
				return badge("in-stock", "In Stock")
			}
			return badge("out-of-stock", "Out of Stock")
		}),
		table.Render("Status", func(p ramik.Product) table.Cell {
			if p.Active {
				return badge("active", "Active")
			}
			return badge("inactive", "Inactive")
		}),
	}
}

// CategoryColumns is the categories screen.
func CategoryColumns() []table.Column[ramik.Category] {
	return []table.Column[ramik.Category]{
		table.Field("ID", func(c ramik.Category) any { return c.ID }),
		table.Field("Name", func(c ramik.Category) any { return c.Name }),
	}
}

// LanguageColumns is the languages screen.
func LanguageColumns() []table.Column[ramik.Language] {
	return []table.Column[ramik.Language]{
		table.Field("Code", func(l ramik.Language) any { return l.Code }),
		table.Field("Name", func(l ramik.Language) any { return l.Name }),
	}
}

// RegionColumns is the regions screen.
func RegionColumns() []table.Column[ramik.Region] {
	return []table.Column[ramik.Region]{
		table.Field("Name", func(r ramik.Region) any { return r.Name }),
		table.Field("Price %", func(r ramik.Region) any { return r.PricePercentage }),
		table.Render("Status", func(r ramik.Region) table.Cell {
			if r.Active {
				return badge("active", "Active")
			}
			return badge("inactive", "Inactive")
		}),
	}
}

// SizeColumns is the sizes tab of the product editor.
func SizeColumns() []table.Column[ramik.ProductSize] {
	return []table.Column[ramik.ProductSize]{
		table.Field("Size", func(s ramik.ProductSize) any { return s.Size }),
		table.Field("Stock", func(s ramik.ProductSize) any { return s.Stock }),
		table.Render("Price", func(s ramik.ProductSize) table.Cell {
			return table.Text("$" + s.Price.StringFixed(2))
		}),
	}
}

// CartColumns is the cart page.
func CartColumns() []table.Column[CartItem] {
	return []table.Column[CartItem]{
		table.Field("Product", func(it CartItem) any { return it.Name }),
		table.Field("Size", func(it CartItem) any { return it.Size }),
		table.Render("Price", func(it CartItem) table.Cell {
			return table.Text("$" + it.DiscountedPrice.StringFixed(2))
		}),
		table.Render("Was", func(it CartItem) table.Cell {
			return table.Text("$" + it.OriginalPrice.StringFixed(2))
		}),
		table.Field("Qty", func(it CartItem) any { return it.Quantity }),
		table.Render("Total", func(it CartItem) table.Cell {
			return table.Text("$" + it.LineTotal().StringFixed(2))
		}),
	}
}
