package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/primeo/api/internal/auth"
	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/models"
	"github.com/primeo/api/internal/pagination"
	"github.com/primeo/api/internal/policy"
)

// validate is the shared DTO validator; handlers tag their request structs.
var validate = validator.New()

// decodeJSON decodes and validates a request body. Returns false after having
// written the error envelope.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Corps de requête invalide", nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			httpx.Error(w, http.StatusBadRequest, "Validation échouée", details)
			return false
		}
		httpx.Error(w, http.StatusBadRequest, "Validation échouée", nil)
		return false
	}
	return true
}

// pathID extracts the {id} wildcard as uint.
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// paginate parses page/limit query params, writing the 400 on invalid input.
func paginate(w http.ResponseWriter, r *http.Request) (pagination.Params, bool) {
	q := r.URL.Query()
	p, err := pagination.Parse(q.Get("page"), q.Get("limit"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Paramètres de pagination invalides", nil)
		return pagination.Params{}, false
	}
	return p, true
}

// authorize checks the gate for the current user; on denial it writes the
// envelope and returns nil.
func authorize(w http.ResponseWriter, r *http.Request, gate *policy.Gate, action policy.Action, resource string) *models.User {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Authentification requise", nil)
		return nil
	}
	if err := gate.Authorize(r.Context(), user, action, resource, nil); err != nil {
		httpx.Error(w, http.StatusForbidden, "Accès refusé", nil)
		return nil
	}
	return user
}
