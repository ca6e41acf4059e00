package handlers

import (
	"InvKeeper/internal/service"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

const (
	fieldFile = "foto"
	// запас на текстовые поля multipart сверх размера файла
	formOverhead = 1 << 20
)

var integerRe = regexp.MustCompile(`^-?\d+$`)

// quantity принимает целое число, строку из цифр, пустую строку или null (= 0).
type quantity int64

func (q *quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*q = 0
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	n, err := parseQuantity(s)
	if err != nil {
		return err
	}
	*q = quantity(n)
	return nil
}

var errNotInteger = errors.New("carico and scarico must be whole numbers")

func parseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !integerRe.MatchString(s) {
		return 0, errNotInteger
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errNotInteger
	}
	return n, nil
}

// itemRequest — JSON-форма запроса на создание/изменение записи.
type itemRequest struct {
	CodiceArticolo *string  `json:"codice_articolo"`
	Descrizione    *string  `json:"descrizione"`
	UnitaMisura    *string  `json:"unita_misura"`
	Locazione      *string  `json:"locazione"`
	DataIngresso   *string  `json:"data_ingresso"`
	Carico         quantity `json:"carico"`
	Scarico        quantity `json:"scarico"`
}

func (req itemRequest) fields() service.ItemFields {
	return service.ItemFields{
		CodiceArticolo: req.CodiceArticolo,
		Descrizione:    req.Descrizione,
		UnitaMisura:    req.UnitaMisura,
		Locazione:      req.Locazione,
		DataIngresso:   req.DataIngresso,
		Carico:         int64(req.Carico),
		Scarico:        int64(req.Scarico),
	}
}

// badPayload — ошибка формы запроса (400).
type badPayload struct{ msg string }

func (e *badPayload) Error() string { return e.msg }

// parseItemPayload читает JSON или multipart/form-data. Неизвестные поля отклоняются.
func parseItemPayload(w http.ResponseWriter, r *http.Request, maxFile int64) (service.ItemFields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFile+formOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return parseMultipartItem(r)
	}

	var req itemRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return service.ItemFields{}, err
		}
		if errors.Is(err, errNotInteger) {
			return service.ItemFields{}, &badPayload{msg: errNotInteger.Error()}
		}
		return service.ItemFields{}, &badPayload{msg: "invalid request: " + err.Error()}
	}
	return req.fields(), nil
}

func parseMultipartItem(r *http.Request) (service.ItemFields, error) {
	var f service.ItemFields
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return f, err
		}
		return f, &badPayload{msg: "invalid multipart form"}
	}
	form := r.MultipartForm

	text := map[string]**string{
		"codice_articolo": &f.CodiceArticolo,
		"descrizione":     &f.Descrizione,
		"unita_misura":    &f.UnitaMisura,
		"locazione":       &f.Locazione,
		"data_ingresso":   &f.DataIngresso,
	}
	for key, values := range form.Value {
		if len(values) != 1 {
			return f, &badPayload{msg: fmt.Sprintf("field %q must appear once", key)}
		}
		v := values[0]
		switch key {
		case "carico", "scarico":
			n, err := parseQuantity(v)
			if err != nil {
				return f, &badPayload{msg: err.Error()}
			}
			if key == "carico" {
				f.Carico = n
			} else {
				f.Scarico = n
			}
		case fieldFile:
			// пустая часть foto без имени файла: браузер шлёт её, если файл не выбран
			if v != "" {
				return f, &badPayload{msg: "foto must be a file"}
			}
		default:
			dst, ok := text[key]
			if !ok {
				return f, &badPayload{msg: fmt.Sprintf("unknown field %q", key)}
			}
			*dst = &v
		}
	}

	for key, files := range form.File {
		if key != fieldFile {
			return f, &badPayload{msg: fmt.Sprintf("unknown file field %q", key)}
		}
		if len(files) != 1 {
			return f, &badPayload{msg: "only one file per item"}
		}
		fh := files[0]
		if fh.Size == 0 {
			continue
		}
		file, err := fh.Open()
		if err != nil {
			return f, fmt.Errorf("open upload: %w", err)
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return f, fmt.Errorf("read upload: %w", err)
		}
		if len(data) == 0 {
			continue
		}
		f.File = &service.Upload{FileName: fh.Filename, Data: data}
	}
	return f, nil
}
