package shared

import (
	"net/http"
	"strconv"
	"strings"
)

const ConfirmHeader = "X-Confirm"

// Confirmed reports whether a destructive request carries an explicit
// confirmation, either as ?confirm=true or an X-Confirm: true header.
func Confirmed(r *http.Request) bool {
	for _, raw := range []string{r.URL.Query().Get("confirm"), r.Header.Get(ConfirmHeader)} {
		if ok, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil && ok {
			return true
		}
	}
	return false
}
