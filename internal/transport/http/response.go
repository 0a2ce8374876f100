package httptransport

import "github.com/gin-gonic/gin"

// ErrorBody is the JSON error envelope every route failure is converted to.
// Store and domain errors never escape as raw text.
type ErrorBody struct {
	Error           string `json:"error"`
	Message         string `json:"message,omitempty"`
	RedirectToLogin bool   `json:"redirectToLogin,omitempty"`
}

// RespondError writes the structured error envelope.
func RespondError(c *gin.Context, status int, errMsg, detail string) {
	c.JSON(status, ErrorBody{Error: errMsg, Message: detail})
}

// RespondAuthError writes the 401 envelope with the login redirect hint the
// client acts on.
func RespondAuthError(c *gin.Context, errMsg string) {
	c.AbortWithStatusJSON(401, ErrorBody{Error: errMsg, RedirectToLogin: true})
}
