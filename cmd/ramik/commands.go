package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/muhammadarsalan100/ramik"
	"github.com/muhammadarsalan100/ramik/dashboard"
	"github.com/muhammadarsalan100/ramik/table"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":       {"sign in: -email addr [-password pw | RAMIK_PASSWORD]", login},
	"logout":      {"clear the stored session", logout},
	"whoami":      {"show the signed-in user", whoami},
	"list":        {"list categories|languages|regions|users|products|sizes [-product id] [-json]", list},
	"show":        {"show product|region <id>", show},
	"category":    {"create <name> | rename <id> <name> | delete <id>", category},
	"language":    {"create <code> <name> | rename <id> <name> | delete <id>", language},
	"region":      {"create|update [<id>] -name n -percent p | delete <id>", region},
	"user":        {"activate|deactivate <id> | role <id> admin|user | delete <id>", user},
	"product":     {"submit [flags] | update <id> [flags] | delete <id>", product},
	"size":        {"create -product id -size s -stock n -price p | update <id> [flags] | delete <id>", size},
	"translation": {"create -product id -language id -category id -title t | update <id> [flags] | delete <id>", translation},
	"serve":       {"run the dashboard server [-addr host:port]", serve},
}

// multi collects a repeated string flag.
type multi []string

func (m *multi) String() string     { return strings.Join(*m, ",") }
func (m *multi) Set(v string) error { *m = append(*m, v); return nil }

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// isSet reports whether the flag was given on the command line.
func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// need checks the positional argument count of a subcommand.
func need(args []string, n int, form string) error {
	if len(args) != n {
		return fmt.Errorf("usage: %s", form)
	}
	return nil
}

func output[T any](a *app, asJSON bool, rows []T, cols []table.Column[T]) error {
	if asJSON {
		return printJSON(a, rows)
	}
	return table.WriteText(a.out, table.View[T]{Rows: rows, Columns: cols})
}

func printJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func login(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("RAMIK_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.client.Login(ctx, ramik.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	u := res.Session.User
	fmt.Fprintf(a.out, "Logged in as %s <%s> (%s); session expires %s\n",
		u.Name, u.Email, u.Role, res.Session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	if u.Role != ramik.RoleAdmin {
		fmt.Fprintln(a.out, "warning: this account is not an admin; most commands will be refused")
	}
	return nil
}

func logout(ctx context.Context, a *app, _ []string) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func whoami(ctx context.Context, a *app, _ []string) error {
	ok, err := a.client.Authenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ramik.ErrSessionExpired
	}
	s, err := a.client.Sessions().Read(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return ramik.ErrSessionExpired
	}
	region := "-"
	if s.User.Region != nil {
		region = s.User.Region.Name
	}
	fmt.Fprintf(a.out, "%s <%s>\nrole: %s\nregion: %s\nexpires: %s\n",
		s.User.Name, s.User.Email, s.User.Role, region, s.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func list(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: list <resource> [-json]")
	}
	resource := args[0]
	fs := newFlags("list " + resource)
	asJSON := fs.Bool("json", false, "print JSON")
	productID := fs.Int64("product", 0, "product id (sizes only)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch resource {
	case "categories":
		rows, err := a.dash.Categories(ctx)
		if err != nil {
			return err
		}
		return output(a, *asJSON, rows, dashboard.CategoryColumns())
	case "languages":
		rows, err := a.dash.Languages(ctx)
		if err != nil {
			return err
		}
		return output(a, *asJSON, rows, dashboard.LanguageColumns())
	case "regions":
		rows, err := a.dash.Regions(ctx)
		if err != nil {
			return err
		}
		return output(a, *asJSON, rows, dashboard.RegionColumns())
	case "users":
		rows, err := a.dash.Users(ctx)
		if err != nil {
			return err
		}
		return output(a, *asJSON, rows, dashboard.UserColumns())
	case "products":
		rows, err := a.dash.Products(ctx)
		if err != nil {
			return err
		}
		return output(a, *asJSON, rows, dashboard.ProductColumns())
	case "sizes":
		if *productID <= 0 {
			return errors.New("list sizes needs -product")
		}
		rows, err := a.dash.ProductSizes(ctx, *productID)
		if err != nil {
			return err
		}
		return output(a, *asJSON, rows, dashboard.SizeColumns())
	default:
		return fmt.Errorf("unknown resource %q", resource)
	}
}

func show(ctx context.Context, a *app, args []string) error {
	if err := need(args, 2, "show product|region <id>"); err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	switch args[0] {
	case "product":
		p, err := a.dash.Product(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(a, p)
	case "region":
		r, err := a.dash.Region(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(a, r)
	default:
		return fmt.Errorf("cannot show %q", args[0])
	}
}

func category(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: category create|rename|delete ...")
	}
	switch args[0] {
	case "create":
		if err := need(args, 2, "category create <name>"); err != nil {
			return err
		}
		c, err := a.dash.CreateCategory(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(a, c)
	case "rename":
		if err := need(args, 3, "category rename <id> <name>"); err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		c, err := a.dash.UpdateCategory(ctx, id, args[2])
		if err != nil {
			return err
		}
		return printJSON(a, c)
	case "delete":
		if err := need(args, 2, "category delete <id>"); err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return a.dash.DeleteCategory(ctx, id)
	default:
		return fmt.Errorf("unknown category action %q", args[0])
	}
}

func language(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: language create|rename|delete ...")
	}
	switch args[0] {
	case "create":
		if err := need(args, 3, "language create <code> <name>"); err != nil {
			return err
		}
		l, err := a.dash.CreateLanguage(ctx, ramik.LanguageInput{Code: args[1], Name: args[2]})
		if err != nil {
			return err
		}
		return printJSON(a, l)
	case "rename":
		if err := need(args, 3, "language rename <id> <name>"); err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		l, err := a.dash.UpdateLanguage(ctx, id, args[2])
		if err != nil {
			return err
		}
		return printJSON(a, l)
	case "delete":
		if err := need(args, 2, "language delete <id>"); err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return a.dash.DeleteLanguage(ctx, id)
	default:
		return fmt.Errorf("unknown language action %q", args[0])
	}
}

func region(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: region create|update|delete ...")
	}
	action, rest := args[0], args[1:]

	if action == "delete" {
		if err := need(rest, 1, "region delete <id>"); err != nil {
			return err
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		return a.dash.DeleteRegion(ctx, id)
	}

	var id int64
	if action == "update" {
		if len(rest) == 0 {
			return errors.New("usage: region update <id> -name n -percent p")
		}
		var err error
		if id, err = parseID(rest[0]); err != nil {
			return err
		}
		rest = rest[1:]
	}

	fs := newFlags("region " + action)
	name := fs.String("name", "", "region name")
	percent := fs.String("percent", "0", "price percentage")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	pct, err := ramik.NewAmount(*percent)
	if err != nil {
		return err
	}
	in := ramik.RegionInput{Name: *name, PricePercentage: pct}

	var r *ramik.Region
	switch action {
	case "create":
		r, err = a.dash.CreateRegion(ctx, in)
	case "update":
		r, err = a.dash.UpdateRegion(ctx, id, in)
	default:
		return fmt.Errorf("unknown region action %q", action)
	}
	if err != nil {
		return err
	}
	return printJSON(a, r)
}

func user(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: user activate|deactivate|role|delete <id> ...")
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	var in ramik.UserUpdate
	switch args[0] {
	case "activate", "deactivate":
		active := args[0] == "activate"
		in.Active = &active
	case "role":
		if err := need(args, 3, "user role <id> admin|user"); err != nil {
			return err
		}
		role := ramik.Role(args[2])
		in.Role = &role
	case "delete":
		return a.dash.DeleteUser(ctx, id)
	default:
		return fmt.Errorf("unknown user action %q", args[0])
	}

	u, err := a.dash.UpdateUser(ctx, id, in)
	if err != nil {
		return err
	}
	return printJSON(a, u)
}

func product(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: product submit|update|delete ...")
	}
	switch args[0] {
	case "submit":
		return submitProduct(ctx, a, args[1:])
	case "update":
		return updateProduct(ctx, a, args[1:])
	case "delete":
		if err := need(args, 2, "product delete <id>"); err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return a.dash.DeleteProduct(ctx, id)
	default:
		return fmt.Errorf("unknown product action %q", args[0])
	}
}

// openFile opens path as an upload; the caller closes it.
func openFile(path string) (ramik.File, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return ramik.File{}, nil, err
	}
	return ramik.File{Name: filepath.Base(path), Content: f}, f, nil
}

func submitProduct(ctx context.Context, a *app, args []string) error {
	fs := newFlags("product submit")
	perfume := fs.String("type", "", "perfume type: male, female or unisex")
	discount := fs.String("discount", "", "discount percentage")
	thumbnail := fs.String("thumbnail", "", "thumbnail image file")
	var images, sizes, translations multi
	fs.Var(&images, "image", "gallery image file (up to 3, repeatable)")
	fs.Var(&sizes, "size", "size as label:stock:price (repeatable)")
	fs.Var(&translations, "translation", "translation as languageID:categoryID:title[:description] (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	draft := ramik.ProductDraft{PerfumeType: ramik.PerfumeType(*perfume)}
	if *discount != "" {
		d, err := ramik.NewAmount(*discount)
		if err != nil {
			return err
		}
		draft.DiscountPercentage = d.Ptr()
	}
	for _, s := range sizes {
		in, err := parseSize(s)
		if err != nil {
			return err
		}
		draft.Sizes = append(draft.Sizes, in)
	}
	for _, s := range translations {
		in, err := parseTranslation(s)
		if err != nil {
			return err
		}
		draft.Translations = append(draft.Translations, in)
	}

	if *thumbnail != "" {
		file, f, err := openFile(*thumbnail)
		if err != nil {
			return err
		}
		defer f.Close()
		draft.Thumbnail = file
	}
	for _, path := range images {
		file, f, err := openFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		draft.Gallery = append(draft.Gallery, file)
	}

	id, err := a.dash.SubmitProduct(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created product %d\n", id)
	return nil
}

func parseSize(s string) (ramik.SizeInput, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return ramik.SizeInput{}, fmt.Errorf("size %q: want label:stock:price", s)
	}
	stock, err := strconv.Atoi(parts[1])
	if err != nil {
		return ramik.SizeInput{}, fmt.Errorf("size %q: bad stock: %w", s, err)
	}
	price, err := ramik.NewAmount(parts[2])
	if err != nil {
		return ramik.SizeInput{}, fmt.Errorf("size %q: bad price: %w", s, err)
	}
	in := ramik.SizeInput{Stock: stock, Price: price}
	if parts[0] != "" {
		label := parts[0]
		in.Size = &label
	}
	return in, nil
}

func parseTranslation(s string) (ramik.TranslationInput, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return ramik.TranslationInput{}, fmt.Errorf("translation %q: want languageID:categoryID:title[:description]", s)
	}
	lang, err := parseID(parts[0])
	if err != nil {
		return ramik.TranslationInput{}, fmt.Errorf("translation %q: language: %w", s, err)
	}
	cat, err := parseID(parts[1])
	if err != nil {
		return ramik.TranslationInput{}, fmt.Errorf("translation %q: category: %w", s, err)
	}
	in := ramik.TranslationInput{LanguageID: lang, CategoryID: cat, Title: parts[2]}
	if len(parts) == 4 {
		in.Description = parts[3]
	}
	return in, nil
}

func updateProduct(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: product update <id> [flags]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	fs := newFlags("product update")
	active := fs.Bool("active", true, "whether the product is listed")
	perfume := fs.String("type", "", "perfume type")
	discount := fs.String("discount", "", "discount percentage")
	var cleared multi
	fs.Var(&cleared, "clear", "image slot to clear: thumbnail, image1, image2, image3 (repeatable)")
	slots := map[ramik.ImageSlot]*string{
		ramik.SlotThumbnail: fs.String("thumbnail", "", "new thumbnail file"),
		ramik.SlotImage1:    fs.String("image1", "", "new image1 file"),
		ramik.SlotImage2:    fs.String("image2", "", "new image2 file"),
		ramik.SlotImage3:    fs.String("image3", "", "new image3 file"),
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var in ramik.UpdateProductInput
	if isSet(fs, "active") {
		in.Active = active
	}
	if *perfume != "" {
		t := ramik.PerfumeType(*perfume)
		in.PerfumeType = &t
	}
	if *discount != "" {
		d, err := ramik.NewAmount(*discount)
		if err != nil {
			return err
		}
		in.DiscountPercentage = d.Ptr()
	}
	for _, s := range cleared {
		in.Clear = append(in.Clear, ramik.ImageSlot(s))
	}
	for slot, path := range slots {
		if *path == "" {
			continue
		}
		file, f, err := openFile(*path)
		if err != nil {
			return err
		}
		img, err := a.client.Media.Upload(ctx, file)
		f.Close()
		if err != nil {
			return err
		}
		if in.Images == nil {
			in.Images = map[ramik.ImageSlot]ramik.Image{}
		}
		in.Images[slot] = img
	}

	p, err := a.dash.UpdateProduct(ctx, id, in)
	if err != nil {
		return err
	}
	return printJSON(a, p)
}

func size(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: size create|update|delete ...")
	}
	action, rest := args[0], args[1:]

	var id int64
	if action == "update" || action == "delete" {
		if len(rest) == 0 {
			return fmt.Errorf("usage: size %s <id>", action)
		}
		var err error
		if id, err = parseID(rest[0]); err != nil {
			return err
		}
		rest = rest[1:]
	}
	if action == "delete" {
		return a.dash.DeleteProductSize(ctx, id)
	}

	fs := newFlags("size " + action)
	productID := fs.Int64("product", 0, "product id")
	label := fs.String("size", "", "size label, e.g. 50ml")
	stock := fs.Int("stock", 0, "units in stock")
	price := fs.String("price", "0", "price")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	amount, err := ramik.NewAmount(*price)
	if err != nil {
		return err
	}

	var out *ramik.ProductSize
	switch action {
	case "create":
		out, err = a.dash.CreateProductSize(ctx, ramik.ProductSizeInput{
			ProductID: *productID,
			Size:      *label,
			Stock:     *stock,
			Price:     amount,
		})
	case "update":
		var in ramik.ProductSizeUpdate
		if isSet(fs, "size") {
			in.Size = label
		}
		if isSet(fs, "stock") {
			in.Stock = stock
		}
		if isSet(fs, "price") {
			in.Price = amount.Ptr()
		}
		out, err = a.dash.UpdateProductSize(ctx, id, in)
	default:
		return fmt.Errorf("unknown size action %q", action)
	}
	if err != nil {
		return err
	}
	return printJSON(a, out)
}

func translation(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: translation create|update|delete ...")
	}
	action, rest := args[0], args[1:]

	var id int64
	if action == "update" || action == "delete" {
		if len(rest) == 0 {
			return fmt.Errorf("usage: translation %s <id>", action)
		}
		var err error
		if id, err = parseID(rest[0]); err != nil {
			return err
		}
		rest = rest[1:]
	}
	if action == "delete" {
		return a.dash.DeleteProductTranslation(ctx, id)
	}

	fs := newFlags("translation " + action)
	productID := fs.Int64("product", 0, "product id")
	languageID := fs.Int64("language", 0, "language id")
	categoryID := fs.Int64("category", 0, "category id")
	title := fs.String("title", "", "title")
	description := fs.String("description", "", "description")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var (
		out *ramik.ProductTranslation
		err error
	)
	switch action {
	case "create":
		out, err = a.dash.CreateProductTranslation(ctx, ramik.ProductTranslationInput{
			ProductID:   *productID,
			LanguageID:  *languageID,
			CategoryID:  *categoryID,
			Title:       *title,
			Description: *description,
		})
	case "update":
		var in ramik.ProductTranslationUpdate
		if isSet(fs, "category") {
			in.CategoryID = categoryID
		}
		if isSet(fs, "title") {
			in.Title = title
		}
		if isSet(fs, "description") {
			in.Description = description
		}
		out, err = a.dash.UpdateProductTranslation(ctx, id, in)
	default:
		return fmt.Errorf("unknown translation action %q", action)
	}
	if err != nil {
		return err
	}
	return printJSON(a, out)
}
