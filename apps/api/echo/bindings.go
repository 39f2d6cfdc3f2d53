package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

var idsParam = "ids"

// IDList binds the comma-separated "ids" query param used by batch deletes.
type IDList struct {
	IDs []string
}

func (l *IDList) Bind(ctx echo.Context) {
	val := ctx.QueryParam(idsParam)
	if val == "" {
		return
	}
	for _, id := range strings.Split(val, ",") {
		if id = strings.TrimSpace(id); id != "" {
			l.IDs = append(l.IDs, id)
		}
	}
}
