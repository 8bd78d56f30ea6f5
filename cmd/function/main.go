package main

import (
	"log"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/function"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
)

// Runs the Cloud Function locally.
func main() {
	if os.Getenv("FUNCTION_TARGET") == "" {
		_ = os.Setenv("FUNCTION_TARGET", function.EntryPoint)
	}

	port := global.GetEnvOrDefault("PORT", "8080")
	log.Printf("Function %s listening on port %s", function.EntryPoint, port)
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v", err)
	}
}
