package events

import (
	"context"
	"sync"
	"time"

	Logger "github.com/Luismorlan/socialmux/utils/log"
)

const (
	GracefulRetryDelay = 3
)

type Module interface {
	// RunModule contains the customized logic of the module. It takes in a
	// context object by which its lifecycle is managed. Return error if
	// encountered any error during execution.
	RunModule(ctx context.Context) error

	// Return name of the Module. Uniquely identifies the module instance.
	Name() string
}

func RunModuleWithGracefulRestart(ctx context.Context, module Module) {
	for {
		err := module.RunModule(ctx)
		if err == nil || ctx.Err() != nil {
			break
		}
		Logger.Log.Warnf(
			"Module %s exited with error %v, retry in %d seconds",
			module.Name(),
			err,
			GracefulRetryDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(GracefulRetryDelay * time.Second):
		}
	}
}

// Engine runs modules consuming the bus until its context is cancelled.
type Engine struct {
	Modules []Module

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEngine(ctx context.Context, ms ...Module) *Engine {
	ctx, cancel := context.WithCancel(ctx)
	return &Engine{Modules: ms, ctx: ctx, cancel: cancel}
}

// Start runs every module in its own routine and returns immediately.
func (e *Engine) Start() {
	for idx := range e.Modules {
		e.wg.Add(1)
		go func(m Module) {
			defer e.wg.Done()
			Logger.Log.Infof("start engine module %s", m.Name())
			RunModuleWithGracefulRestart(e.ctx, m)
			Logger.Log.Infof("Module %s finished execution.", m.Name())
		}(e.Modules[idx])
	}
}

// Shutdown cancels all modules and waits for them to return.
func (e *Engine) Shutdown() {
	Logger.Log.Infoln("Starting graceful shutdown of event modules.")
	e.cancel()
	e.wg.Wait()
}
