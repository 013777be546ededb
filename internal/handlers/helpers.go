package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"traders/internal/common"
	"traders/internal/middleware"
)

// render executes page with data, adding the pending flash message.
func render(c echo.Context, status int, page string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	data["Flash"] = middleware.PopFlash(c)
	return c.Render(status, page, data)
}

func redirect(c echo.Context, location string) error {
	return c.Redirect(http.StatusSeeOther, location)
}

// formReader parses typed values out of a submitted form, collecting
// conversion failures as field errors.
type formReader struct {
	c    echo.Context
	errs *common.ValidationError
}

func newFormReader(c echo.Context) *formReader {
	return &formReader{c: c, errs: &common.ValidationError{}}
}

func (f *formReader) str(name string) string {
	return strings.TrimSpace(f.c.FormValue(name))
}

func (f *formReader) bool(name string) bool {
	switch strings.ToLower(f.str(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// int returns 0 for an empty value, leaving the "required" decision to validation.
func (f *formReader) int(name string) int {
	v := f.optInt(name)
	if v == nil {
		return 0
	}
	return *v
}

func (f *formReader) optInt(name string) *int {
	raw := f.str(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f.errs.Add(name, "Enter a whole number.")
		return nil
	}
	return &n
}

func (f *formReader) float(name string) float64 {
	v := f.optFloat(name)
	if v == nil {
		return 0
	}
	return *v
}

func (f *formReader) optFloat(name string) *float64 {
	raw := f.str(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.errs.Add(name, "Enter a number.")
		return nil
	}
	return &n
}

// merge combines parse failures with err's field errors, parse failures first.
func (f *formReader) merge(err error) *common.ValidationError {
	if verr, ok := common.AsValidationError(err); ok {
		for field, msg := range verr.Fields {
			f.errs.Add(field, msg)
		}
	}
	if f.errs.Empty() {
		return nil
	}
	return f.errs
}

func pathInt(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Page not found")
	}
	return id, nil
}

// httpError maps service errors onto HTTP errors for pages outside the wizard.
func httpError(logger *zap.Logger, err error) error {
	if nerr, ok := common.AsNotFoundError(err); ok {
		return echo.NewHTTPError(http.StatusNotFound, nerr.Error())
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	logger.Error("request failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong")
}

// ErrorHandler renders HTTP errors as the error page.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := "Something went wrong"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
		} else {
			logger.Error("unhandled error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.Render(code, "error.html", echo.Map{"Code": code, "Message": message})
		}
		if err != nil {
			logger.Error("error page failed", zap.Error(err))
		}
	}
}
