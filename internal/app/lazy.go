package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/models"
)

type BuildFunc func(ctx context.Context) (*gin.Engine, error)

// Lazy builds the engine on first use for the serverless entry points.
// A build failure is kept and reported on every later request instead
// of crashing the instance.
type Lazy struct {
	once   sync.Once
	build  BuildFunc
	engine *gin.Engine
	err    error
}

func NewLazy(build BuildFunc) *Lazy {
	return &Lazy{build: build}
}

func (l *Lazy) Engine(ctx context.Context) (*gin.Engine, error) {
	l.once.Do(func() {
		l.engine, l.err = l.build(ctx)
	})
	return l.engine, l.err
}

// FromEnv builds the engine from the process environment. Connections
// live for the lifetime of the instance.
func FromEnv(ctx context.Context) (*gin.Engine, error) {
	if err := global.LoadEnvFile(); err != nil {
		return nil, err
	}
	cfg, err := global.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	engine, _, err := Build(context.WithoutCancel(ctx), cfg, logger)
	return engine, err
}

// ErrorBody is the JSON body sent when the engine could not be built.
func ErrorBody(err error) []byte {
	body, _ := json.Marshal(models.ErrorBody{Error: err.Error()})
	return body
}
