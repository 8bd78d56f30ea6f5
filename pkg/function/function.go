// Package function exposes checkout as a Google Cloud Function.
package function

import (
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"julianmorley.ca/con-plar/storefront-checkout/internal/app"
	"julianmorley.ca/con-plar/storefront-checkout/internal/router"
)

const EntryPoint = "CreateCheckoutSession"

func init() {
	functions.HTTP(EntryPoint, CreateCheckoutSession)
}

var engine = app.NewLazy(app.FromEnv)

// CreateCheckoutSession serves the checkout route whatever path the
// function was invoked on.
func CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	e, err := engine.Engine(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(app.ErrorBody(err))
		return
	}

	r.URL.Path = router.CheckoutPath
	r.URL.RawPath = ""
	e.ServeHTTP(w, r)
}
