package web

import "html/template"

// page is the data every full page template receives.
type page struct {
	Title string
	User  string
	Flash string
	Error string
	Body  template.HTML
}

var pages = template.Must(template.New("pages").Parse(`
{{define "head"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} | Ramik Admin</title>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#fafafa;color:#222}
nav{background:#111;padding:.75rem 1.5rem}
nav a{color:#eee;margin-right:1rem;text-decoration:none}
main{padding:1.5rem}
.data-table{border-collapse:collapse;width:100%;background:#fff}
.data-table th,.data-table td{border-bottom:1px solid #eee;padding:.5rem;text-align:left}
.state{text-align:center;color:#777}
.badge{padding:.1rem .5rem;border-radius:.75rem;font-size:.8rem}
.active,.in-stock{background:#dcfce7}.inactive,.out-of-stock{background:#fee2e2}.discount{background:#fef3c7}
.flash{background:#dbeafe;padding:.5rem}.error{background:#fee2e2;padding:.5rem}
form.inline{display:inline}
</style>
</head>
<body>{{end}}

{{define "login"}}{{template "head" .}}
<main>
<h1>Ramik Admin</h1>
{{with .Error}}<p class="error">{{.}}</p>{{end}}
<form method="post" action="/login">
<p><label>Email <input type="email" name="email" required></label></p>
<p><label>Password <input type="password" name="password" required></label></p>
<p><button type="submit">Sign in</button></p>
</form>
</main>
</body>
</html>{{end}}

{{define "page"}}{{template "head" .}}
<nav>
<a href="/dashboard">Overview</a>
<a href="/dashboard/products">Products</a>
<a href="/dashboard/categories">Categories</a>
<a href="/dashboard/languages">Languages</a>
<a href="/dashboard/regions">Regions</a>
<a href="/dashboard/users">Users</a>
<a href="/dashboard/cart">Cart</a>
<form class="inline" method="post" action="/logout"><button type="submit">Logout{{with .User}} {{.}}{{end}}</button></form>
</nav>
<main>
<h1>{{.Title}}</h1>
{{with .Flash}}<p class="flash">{{.}}</p>{{end}}
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{.Body}}
</main>
</body>
</html>{{end}}
`))

var overview = template.Must(template.New("overview").Parse(`<ul>
{{range .}}<li><a href="{{.Href}}">{{.Name}}</a></li>
{{end}}</ul>
`))

var cartSummary = template.Must(template.New("cart").Parse(`<dl class="summary">
<dt>Items</dt><dd>{{.Count}}</dd>
<dt>Subtotal</dt><dd>${{.Subtotal}}</dd>
<dt>Savings</dt><dd>-${{.Savings}}</dd>
<dt>Total</dt><dd>${{.Total}}</dd>
</dl>
`))
