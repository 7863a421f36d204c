package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/blogem/contacts/middleware"
	"github.com/blogem/contacts/models"
	"github.com/blogem/contacts/services"
)

// UsersController handles directory requests
type UsersController struct {
	*responder
}

// Index handles GET /users and GET /users/page/{page}. The field and term
// query parameters of the search form redirect to the search route.
func (c *UsersController) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if term := query.Get("term"); term != "" {
		target := fmt.Sprintf("/users/search/%s/%s", url.PathEscape(query.Get("field")), url.PathEscape(term))
		if query.Get("case_sensitive") != "" {
			target += "?case_sensitive=" + url.QueryEscape(query.Get("case_sensitive"))
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	result := c.run(w, r, services.OperationRequest{Op: services.OpList, Page: pageRequest(r)})
	if result == nil {
		return
	}

	c.render(w, r, http.StatusOK, "users", &models.PageData{
		Title:       "Users",
		CurrentPage: "users",
		Data:        result,
		PagePath:    "/users/page/",
	})
}

// Search handles GET /users/search/{field}/{term}
func (c *UsersController) Search(w http.ResponseWriter, r *http.Request) {
	filter := filterFromRoute(r)

	result := c.run(w, r, services.OperationRequest{Op: services.OpSearch, Filter: filter, Page: pageRequest(r)})
	if result == nil {
		return
	}

	pagePath := "?page="
	if filter.CaseSensitive {
		pagePath = "?case_sensitive=true&page="
	}

	c.render(w, r, http.StatusOK, "users", &models.PageData{
		Title:       fmt.Sprintf("Users with %s containing %q", filter.Field, filter.Term),
		CurrentPage: "users",
		Data:        result,
		PagePath:    r.URL.EscapedPath() + pagePath,
	})
}

// Find handles GET /users/find/{field}/{term}
func (c *UsersController) Find(w http.ResponseWriter, r *http.Request) {
	result := c.run(w, r, services.OperationRequest{Op: services.OpFind, Filter: filterFromRoute(r)})
	if result == nil {
		return
	}

	page := &models.PageData{Title: "Find user", CurrentPage: "users", Data: result}
	if result.User == nil {
		page.FlashMessage = &models.FlashMessage{Type: "info", Message: result.Message}
	}
	c.render(w, r, http.StatusOK, "user", page)
}

// Show handles GET /users/{id}
func (c *UsersController) Show(w http.ResponseWriter, r *http.Request) {
	result := c.run(w, r, services.OperationRequest{Op: services.OpGet, ID: parseID(r, "id")})
	if result == nil {
		return
	}

	c.render(w, r, http.StatusOK, "user", &models.PageData{
		Title:       result.User.Name,
		CurrentPage: "users",
		Data:        result,
	})
}

// Create handles POST /users
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	in, err := parseUserInput(r)
	if err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	result := c.run(w, r, services.OperationRequest{Op: services.OpCreate, Name: in.Name, Location: in.Location})
	if result == nil {
		return
	}

	c.mutated(w, r, http.StatusCreated, result, fmt.Sprintf("/users/%d", result.User.ID))
}

// Update handles POST /users/{id}
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	in, err := parseUserInput(r)
	if err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	req := services.OperationRequest{Op: services.OpUpdate, ID: parseID(r, "id"), Name: in.Name, Location: in.Location}
	result := c.run(w, r, req)
	if result == nil {
		return
	}

	c.mutated(w, r, http.StatusOK, result, fmt.Sprintf("/users/%d", result.User.ID))
}

// Delete handles POST /users/{id}/delete
func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	result := c.run(w, r, services.OperationRequest{Op: services.OpDelete, ID: parseID(r, "id")})
	if result == nil {
		return
	}

	c.mutated(w, r, http.StatusOK, result, "/users")
}

// mutated answers a successful write: API clients get the result, browsers
// are redirected.
func (c *UsersController) mutated(w http.ResponseWriter, r *http.Request, status int, result *services.OperationResult, location string) {
	if middleware.WantsJSON(r) {
		c.render(w, r, status, "", &models.PageData{Data: result})
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func filterFromRoute(r *http.Request) models.Filter {
	sensitive, _ := strconv.ParseBool(r.URL.Query().Get("case_sensitive"))
	return models.Filter{
		Field:         models.SearchField(routeParam(r, "field")),
		Term:          routeParam(r, "term"),
		CaseSensitive: sensitive,
	}
}

// routeParam returns a decoded URL parameter. chi matches on the raw path
// when the request path carries escapes.
func routeParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
