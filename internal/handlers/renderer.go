package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"traders/internal/common"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"home.html",
	"customers.html",
	"customer_detail.html",
	"products.html",
	"product_detail.html",
	"product_form.html",
	"order_customer.html",
	"order_products.html",
	"order_details.html",
	"order_confirm.html",
	"order_success.html",
	"error.html",
}

// Renderer renders the embedded page templates, each wrapped in the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

var templateFuncs = template.FuncMap{
	"money":   money,
	"str":     derefString,
	"num":     derefNumber,
	"date":    formatDate,
	"pageURL": pageURL,
	"errorOf": errorOf,
	"isRef":   isRef,
}

// errorOf returns the message for field, tolerating a missing error map.
func errorOf(errs map[string]string, field string) string {
	return errs[field]
}

// isRef reports whether the optional foreign key ref points at id.
func isRef(ref *int, id int) bool {
	return ref != nil && *ref == id
}

func money(v interface{}) string {
	switch n := v.(type) {
	case decimal.Decimal:
		return n.StringFixed(2)
	case float64:
		return decimal.NewFromFloat(n).StringFixed(2)
	case *float64:
		if n == nil {
			return ""
		}
		return decimal.NewFromFloat(*n).StringFixed(2)
	}
	return fmt.Sprint(v)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefNumber(v interface{}) string {
	switch n := v.(type) {
	case *int:
		if n != nil {
			return strconv.Itoa(*n)
		}
	case *float64:
		if n != nil {
			return strconv.FormatFloat(*n, 'f', -1, 64)
		}
	case int:
		return strconv.Itoa(n)
	}
	return ""
}

func formatDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if !t.IsZero() {
			return t.Format(common.DateLayout)
		}
	case *time.Time:
		if t != nil {
			return t.Format(common.DateLayout)
		}
	}
	return ""
}

// pageURL rebuilds path with the current query and the given page number.
func pageURL(path string, query url.Values, page int) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return path + "?" + q.Encode()
}
