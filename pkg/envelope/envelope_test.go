package envelope

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestOK(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), rec)

	if err := OK(c, http.StatusCreated, "Created", map[string]string{"id": "1"}); err != nil {
		t.Fatalf("OK: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["success"] != true || body["message"] != "Created" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["data"]; !ok {
		t.Error("data missing")
	}
}

func TestOKOmitsNilData(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), rec)

	if err := OK(c, http.StatusOK, "Done", nil); err != nil {
		t.Fatalf("OK: %v", err)
	}
	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if _, ok := body["data"]; ok {
		t.Error("nil data should be omitted")
	}
}

func TestErrorHandlerHTTPError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), rec)

	ErrorHandler(echo.NewHTTPError(http.StatusNotFound, "patient not found"), c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "patient not found" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestErrorHandlerHidesInternalDetail(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), rec)

	ErrorHandler(errors.New("pq: connection refused at 10.0.0.3"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "internal server error" {
		t.Errorf("internal detail leaked: %q", body["error"])
	}
}
