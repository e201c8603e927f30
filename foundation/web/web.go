package web

import (
	"github.com/gin-gonic/gin"
)

// Handler is the signature every controller method implements. Returning an
// error lets a handler bail out early; the error has already been written to
// the response by the time it propagates here.
type Handler func(c *Context) error

// App wraps gin.Engine so routes can be declared with Handler instead of
// gin.HandlerFunc.
type App struct {
	*gin.Engine
}

func NewApp() *App {
	return &App{Engine: gin.New()}
}

func (a *App) handle(method, path string, handler Handler, middleware ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, middleware...)
	chain = append(chain, func(c *gin.Context) {
		ctx := NewContext(c)
		_ = handler(ctx)
	})
	a.Engine.Handle(method, path, chain...)
}

func (a *App) Get(path string, handler Handler, middleware ...gin.HandlerFunc) {
	a.handle("GET", path, handler, middleware...)
}

func (a *App) Post(path string, handler Handler, middleware ...gin.HandlerFunc) {
	a.handle("POST", path, handler, middleware...)
}

func (a *App) Put(path string, handler Handler, middleware ...gin.HandlerFunc) {
	a.handle("PUT", path, handler, middleware...)
}

func (a *App) Patch(path string, handler Handler, middleware ...gin.HandlerFunc) {
	a.handle("PATCH", path, handler, middleware...)
}

func (a *App) Delete(path string, handler Handler, middleware ...gin.HandlerFunc) {
	a.handle("DELETE", path, handler, middleware...)
}
