package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"julianmorley.ca/con-plar/storefront-checkout/internal/app"
)

type proxyHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// newHandler answers Netlify function events. The engine is built on the
// first event; a configuration error becomes a 500 for every event.
func newHandler(lazy *app.Lazy) proxyHandler {
	var (
		once    sync.Once
		adapter *ginadapter.GinLambda
	)

	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		engine, err := lazy.Engine(ctx)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusInternalServerError,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       string(app.ErrorBody(err)),
			}, nil
		}

		once.Do(func() { adapter = ginadapter.New(engine) })
		return adapter.ProxyWithContext(ctx, req)
	}
}

func main() {
	lambda.Start(newHandler(app.NewLazy(app.FromEnv)))
}
