package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

// Page é o envelope das listagens paginadas.
type Page struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Handle processa o resultado do serviço e envia a resposta padronizada ao cliente.
// Com err nil, data é serializado com successStatus; senão o erro é mapeado pela taxonomia.
func Handle(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err != nil {
		Error(w, r, log, err)
		return
	}

	if data == nil {
		w.WriteHeader(successStatus)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(successStatus)
	if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
		log.Error("Falha ao codificar JSON de resposta", jsonErr)
	}
}

// Error escreve o envelope de erro.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
			"path":    r.URL.Path,
			"message": message,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}
