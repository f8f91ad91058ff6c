package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperror "gopos/internal/errors"
)

// Tamanho máximo aceito para corpos JSON.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSONBody decodifica o corpo em dest e aplica as tags validate.
// Campos desconhecidos são rejeitados.
func DecodeJSONBody(r *http.Request, dest interface{}) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return apperror.NewValidationError(fmt.Sprintf("Payload inválido. Verifique o formato JSON: %v", err))
	}
	return Struct(dest)
}

// Struct valida uma struct já preenchida.
func Struct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fe.Namespace(), validationMessage(fe)))
	}
	sort.Strings(msgs)
	return apperror.NewValidationError(strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "é obrigatório"
	case "min":
		return fmt.Sprintf("deve ser no mínimo %s", fe.Param())
	case "max":
		return fmt.Sprintf("deve ser no máximo %s", fe.Param())
	case "email":
		return "deve ser um email válido"
	case "uuid":
		return "deve ser um UUID válido"
	case "oneof":
		return fmt.Sprintf("deve ser um de [%s]", fe.Param())
	}
	return "é inválido"
}

// ParseQueryInt lê um inteiro da query string, com padrão e faixa.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewValidationError(fmt.Sprintf("O parâmetro %s deve ser numérico.", key))
	}
	if value < min || value > max {
		return 0, apperror.NewValidationError(fmt.Sprintf("O parâmetro %s deve estar entre %d e %d.", key, min, max))
	}
	return value, nil
}

// ParseQueryDecimal lê um decimal obrigatório da query string.
func ParseQueryDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return decimal.Zero, apperror.NewValidationError(fmt.Sprintf("O parâmetro %s é obrigatório.", key))
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.NewValidationError(fmt.Sprintf("O parâmetro %s deve ser um número decimal.", key))
	}
	return value, nil
}

// ParseQueryTime lê uma data opcional (RFC 3339 ou AAAA-MM-DD). Ausente devolve o valor zero.
func ParseQueryTime(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperror.NewValidationError(fmt.Sprintf("O parâmetro %s deve estar no formato RFC 3339 ou AAAA-MM-DD.", key))
}

// RequireUUID valida um identificador vindo da URL.
func RequireUUID(value, field string) error {
	if err := validate.Var(value, "required,uuid"); err != nil {
		return apperror.NewValidationError(fmt.Sprintf("O campo %s deve ser um UUID válido.", field))
	}
	return nil
}
