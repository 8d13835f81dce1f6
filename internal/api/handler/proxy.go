package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// ProxyHandler forwards /api/* to the backend. The outgoing request carries
// the console's session, never the browser's: incoming credentials are
// dropped and the transport attaches the bearer token and XSRF header.
type ProxyHandler struct {
	host    string
	forward echo.HandlerFunc
}

func NewProxyHandler(prefix string, base *url.URL, transport http.RoundTripper) *ProxyHandler {
	proxy := echomiddleware.ProxyWithConfig(echomiddleware.ProxyConfig{
		Balancer: echomiddleware.NewRoundRobinBalancer([]*echomiddleware.ProxyTarget{
			{Name: "backend", URL: base},
		}),
		Rewrite:   map[string]string{prefix + "/*": "/$1"},
		Transport: transport,
		ModifyResponse: func(resp *http.Response) error {
			// Backend cookies stay in the console's jar.
			resp.Header.Del("Set-Cookie")
			return nil
		},
	})
	return &ProxyHandler{
		host: base.Host,
		forward: proxy(func(c echo.Context) error {
			return echo.ErrNotFound
		}),
	}
}

// Handle proxies any method under the prefix.
//
// @Summary      Backend proxy
// @Description  Forwards to the AGROCEAN API with the console session. Area access follows the route table.
// @Tags         proxy
// @Success      200
// @Failure      403  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/{path} [get]
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()
	req.Header.Del("Cookie")
	req.Header.Del("Authorization")
	req.Header.Del("X-XSRF-TOKEN")
	req.Host = h.host
	return h.forward(c)
}
