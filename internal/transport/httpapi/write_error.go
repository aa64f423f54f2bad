package httpapi

import (
	"net/http"

	"github.com/go-chi/render"

	response "github.com/dkravets/nestswap-messenger/internal/lib/api/response"
)

func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := MapError(err)

	render.Status(r, status)
	render.JSON(w, r, struct {
		response.Response
		Code string `json:"code"`
	}{
		Response: response.Error(msg),
		Code:     code,
	})
}
