package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muhammadarsalan100/ramik"
	"github.com/muhammadarsalan100/ramik/dashboard"
	"github.com/muhammadarsalan100/ramik/query"
	"github.com/muhammadarsalan100/ramik/table"
)

type link struct {
	Name string
	Href string
}

func (s *Server) overview(c *gin.Context) {
	var buf bytes.Buffer
	err := overview.Execute(&buf, []link{
		{"Products", "/dashboard/products"},
		{"Categories", "/dashboard/categories"},
		{"Languages", "/dashboard/languages"},
		{"Regions", "/dashboard/regions"},
		{"Users", "/dashboard/users"},
		{"Cart", "/dashboard/cart"},
	})
	s.render(c, http.StatusOK, page{Title: "Overview", Body: template.HTML(buf.String())}, err)
}

func (s *Server) products(c *gin.Context) {
	rows, err := s.dash.Products(c.Request.Context())
	cols := append(dashboard.ProductColumns(), table.Render("", func(p ramik.Product) table.Cell {
		return table.Cell{
			Text: "sizes",
			HTML: template.HTML(fmt.Sprintf(`<a href="/dashboard/products/%d/sizes">Sizes</a>`, p.ID)),
		}
	}))
	renderTable(s, c, "Products", rows, err, cols)
}

func (s *Server) productSizes(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rows, err := s.dash.ProductSizes(c.Request.Context(), id)
	renderTable(s, c, fmt.Sprintf("Sizes of product %d", id), rows, err, dashboard.SizeColumns())
}

func (s *Server) categories(c *gin.Context) {
	rows, err := s.dash.Categories(c.Request.Context())
	renderTable(s, c, "Categories", rows, err, dashboard.CategoryColumns())
}

func (s *Server) languages(c *gin.Context) {
	rows, err := s.dash.Languages(c.Request.Context())
	renderTable(s, c, "Languages", rows, err, dashboard.LanguageColumns())
}

func (s *Server) regions(c *gin.Context) {
	rows, err := s.dash.Regions(c.Request.Context())
	renderTable(s, c, "Regions", rows, err, dashboard.RegionColumns())
}

func (s *Server) users(c *gin.Context) {
	rows, err := s.dash.Users(c.Request.Context())
	renderTable(s, c, "Users", rows, err, userColumns())
}

// userColumns adds the activate/deactivate form to the users screen.
func userColumns() []table.Column[ramik.User] {
	return append(dashboard.UserColumns(), table.Render("", func(u ramik.User) table.Cell {
		label := "Deactivate"
		if !u.Active {
			label = "Activate"
		}
		return table.Cell{
			Text: label,
			HTML: template.HTML(fmt.Sprintf(
				`<form class="inline" method="post" action="/dashboard/users/%d"><input type="hidden" name="active" value="%t"><button type="submit">%s</button></form>`,
				u.ID, !u.Active, label)),
		}
	}))
}

type userForm struct {
	Active *bool   `form:"active"`
	Role   *string `form:"role" binding:"omitempty,oneof=admin user"`
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var form userForm
	if err := c.ShouldBind(&form); err != nil || (form.Active == nil && form.Role == nil) {
		c.String(http.StatusBadRequest, "nothing to update")
		return
	}

	in := ramik.UserUpdate{Active: form.Active}
	if form.Role != nil {
		role := ramik.Role(*form.Role)
		in.Role = &role
	}

	if _, err := s.dash.UpdateUser(c.Request.Context(), id, in); err != nil {
		rows, _, _ := query.Lookup[[]ramik.User](s.dash.Cache(), query.K(dashboard.Users))
		s.render(c, http.StatusOK, page{Title: "Users", Body: usersTable(rows)}, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/users?flash="+url.QueryEscape("User updated"))
}

func usersTable(rows []ramik.User) template.HTML {
	var buf bytes.Buffer
	table.WriteHTML(&buf, table.View[ramik.User]{Rows: rows, Columns: userColumns()})
	return template.HTML(buf.String())
}

func (s *Server) cartPage(c *gin.Context) {
	var buf bytes.Buffer
	cols := append(dashboard.CartColumns(), table.Render("", func(it dashboard.CartItem) table.Cell {
		return table.Cell{
			Text: "",
			HTML: template.HTML(fmt.Sprintf(`<form class="inline" method="post" action="/dashboard/cart/%[1]d/quantity"><button name="delta" value="-1">-</button><button name="delta" value="1">+</button></form>`+
				`<form class="inline" method="post" action="/dashboard/cart/%[1]d/remove"><button type="submit">Remove</button></form>`, it.ID)),
		}
	}))
	err := table.WriteHTML(&buf, table.View[dashboard.CartItem]{
		Rows:         s.cart.Items(),
		Columns:      cols,
		EmptyMessage: "Your cart is empty",
	})
	if err == nil {
		err = cartSummary.Execute(&buf, map[string]any{
			"Count":    s.cart.ItemCount(),
			"Subtotal": s.cart.Subtotal().StringFixed(2),
			"Savings":  s.cart.Savings().StringFixed(2),
			"Total":    s.cart.Total().StringFixed(2),
		})
	}
	s.render(c, http.StatusOK, page{Title: "Cart", Body: template.HTML(buf.String())}, err)
}

func (s *Server) cartQuantity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	delta, err := strconv.Atoi(c.PostForm("delta"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid delta")
		return
	}
	if !s.cart.UpdateQuantity(id, delta) {
		c.String(http.StatusNotFound, "no cart item %d", id)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/cart")
}

func (s *Server) cartRemove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if !s.cart.Remove(id) {
		c.String(http.StatusNotFound, "no cart item %d", id)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard/cart")
}
