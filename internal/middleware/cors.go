package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
)

// CORS allows any origin and any request header.
func CORS() Stage {
	return Stage{
		Name: "cors",
		Handler: cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowHeaders:    []string{"*"},
			AllowMethods: []string{
				http.MethodGet,
				http.MethodHead,
				http.MethodPost,
				http.MethodPut,
				http.MethodPatch,
				http.MethodDelete,
			},
		}),
	}
}
