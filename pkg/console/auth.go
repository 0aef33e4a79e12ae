package console

import (
	"net/http"
	"strings"
	"time"

	"github.com/nna-wms/wmsconsole/pkg/session"
)

// signInPage shows the token form, or sends already signed-in users home.
func (s *Server) signInPage(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.gate.Authenticate(r); err == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.views.renderSignIn(w, http.StatusOK, signInData{Action: s.gate.SignInPath()})
}

// signIn checks the submitted access token and stores it in the session
// cookie.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	data := signInData{Action: s.gate.SignInPath()}

	token := strings.TrimSpace(r.PostFormValue("token"))
	if token == "" {
		data.Error = "Access token is required"
		s.views.renderSignIn(w, http.StatusBadRequest, data)
		return
	}

	sess, err := s.gate.Parse(token)
	if err != nil {
		s.log.Info("sign-in rejected", "error", err, "remote", r.RemoteAddr)
		data.Error = "Invalid access token"
		s.views.renderSignIn(w, http.StatusUnauthorized, data)
		return
	}

	user := ""
	if sess.Claims != nil {
		user = sess.Claims.Username
	}
	s.log.Info("signed in", "user", user, "verified", sess.Verified)

	session.SetCookie(w, r, sess.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// signInLimited re-renders the form for clients over the attempt limit.
func (s *Server) signInLimited(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	s.log.Warn("sign-in throttled", "remote", r.RemoteAddr, "retry_after", retryAfter)
	s.views.renderSignIn(w, http.StatusTooManyRequests, signInData{
		Action: s.gate.SignInPath(),
		Error:  "Too many sign-in attempts, try again later",
	})
}

// signOut forgets the caller's workspace and clears the cookie.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if token, _ := session.TokenFromRequest(r); token != "" {
		s.spaces.drop(token)
	}
	session.ClearCookie(w)
	http.Redirect(w, r, s.gate.SignInPath(), http.StatusSeeOther)
}
