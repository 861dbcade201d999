package http

import (
	"errors"
	"net/http"

	"moneytracker/internal/auth"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

type loginPage struct {
	Page
	Username string
	Next     string
	Error    string
}

type registerPage struct {
	Page
	Username string
	Errors   core.ValidationErrors
}

func loggedIn(r *http.Request) bool {
	_, ok := auth.UserFromContext(r.Context())
	return ok
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", loginPage{
		Page: s.newPage(w, r, "Sign in", "login"),
		Next: safeNext(r.URL.Query().Get("next")),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w, r)
		return
	}

	username := sanitizeInput(r.PostForm.Get("username"))
	next := safeNext(r.PostForm.Get("next"))
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentAuth)

	user, err := s.deps.Users.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.serverError(w, r, log.OpLogin, err)
			return
		}
		logger.WarnContext(r.Context(), "Login failed",
			"username", username,
			log.FieldOperation, log.OpLogin)
		s.render(w, r, http.StatusUnauthorized, "login.html", loginPage{
			Page:     s.newPage(w, r, "Sign in", "login"),
			Username: username,
			Next:     next,
			Error:    auth.ErrInvalidCredentials.Error(),
		})
		return
	}

	if err := s.deps.Sessions.Login(w, user); err != nil {
		s.serverError(w, r, log.OpLogin, err)
		return
	}
	logger.InfoContext(r.Context(), "User logged in",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpLogin)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "register.html", registerPage{
		Page: s.newPage(w, r, "Create account", "register"),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w, r)
		return
	}

	username := sanitizeInput(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	errs := core.ValidationErrors{}
	if password != r.PostForm.Get("password_confirm") {
		errs.Add("password_confirm", "passwords do not match")
	}

	var user core.User
	err := errs.Err()
	if err == nil {
		user, err = s.deps.Users.Register(r.Context(), username, password)
	}
	if err != nil {
		v, ok := core.AsValidation(err)
		if !ok {
			s.serverError(w, r, log.OpRegister, err)
			return
		}
		s.render(w, r, http.StatusUnprocessableEntity, "register.html", registerPage{
			Page:     s.newPage(w, r, "Create account", "register"),
			Username: username,
			Errors:   v,
		})
		return
	}

	if err := s.deps.Sessions.Login(w, user); err != nil {
		s.serverError(w, r, log.OpRegister, err)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).InfoContext(r.Context(), "User registered",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpRegister)
	NewResponse().Success("Welcome, "+user.Username+"!").Redirect("/").Write(w, r)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.deps.Sessions.Logout(w)
	NewResponse().Flash(FlashInfo, "You have been signed out.").Redirect("/login").Write(w, r)
}
