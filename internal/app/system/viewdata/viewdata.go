// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/papilloncast/internal/app/resources"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/gorilla/csrf"
)

// New builds the common page view model for r: the signed-in caller, if
// any, and the CSRF token for forms and fetch calls.
//
// Usage:
//
//	vm := viewdata.New(r, "Reader")
//	resources.RenderPage(w, http.StatusOK, "reader", vm)
func New(r *http.Request, title string) resources.PageData {
	vm := resources.PageData{
		Title:     title,
		CSRFToken: csrf.Token(r),
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.Email = u.Email
		vm.IsAdmin = u.IsAdmin
	}
	return vm
}
