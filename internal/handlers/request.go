package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/filekit/internal/logger"
	"github.com/sbilibin2017/filekit/internal/middlewares"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/services"
)

const maxUploadMemory = 32 << 20

var validate = validator.New()

// MessageResponse is the envelope returned by every non-listing endpoint.
// swagger:model MessageResponse
type MessageResponse struct {
	// Human readable outcome
	Msg string `json:"msg"`
	// Underlying error, only on server failures
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// logError logs a failed request with its request id.
func logError(r *http.Request, msg string, err error, keysAndValues ...any) {
	kv := append([]any{"request_id", middlewares.RequestIDFromContext(r.Context()), "err", err}, keysAndValues...)
	logger.Log.Errorw(msg, kv...)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageResponse{Msg: msg})
}

// bindRequest fills dst from a JSON body or, for any other content type,
// from form values matched by the form struct tag, then validates it.
func bindRequest(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return err
		}
		return validate.Struct(dst)
	}

	if err := parseForm(r); err != nil {
		return err
	}
	if err := decodeForm(r.Form, dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

// decodeForm copies form values into the string and integer fields of the
// struct dst points to.
func decodeForm(values url.Values, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errors.New("form target must be a pointer to a struct")
	}
	v = v.Elem()

	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		name := field.Tag.Get("form")
		if name == "" || !values.Has(name) {
			continue
		}
		raw := strings.TrimSpace(values.Get(name))

		switch field.Type.Kind() {
		case reflect.String:
			v.Field(i).SetString(raw)
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return errors.New("invalid value for " + name)
			}
			v.Field(i).SetInt(n)
		}
	}
	return nil
}

// parsePage reads page and size from the query string. Values that are
// missing or not numbers fall back to the defaults.
func parsePage(r *http.Request) models.Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return models.NewPage(number, size)
}

// parseID reads a positive integer path parameter value.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// formUploads opens every part of the files field. The returned function
// closes them.
func formUploads(r *http.Request) ([]services.Upload, func(), error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, func() {}, err
	}

	headers := r.MultipartForm.File["files"]
	uploads := make([]services.Upload, 0, len(headers))
	var opened []io.Closer
	closeAll := func() {
		for _, c := range opened {
			c.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		uploads = append(uploads, services.Upload{Filename: fh.Filename, Content: f})
	}
	return uploads, closeAll, nil
}
