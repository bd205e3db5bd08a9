package server

import (
	"net/http"

	"github.com/thelogbook/logbook/internal/auth"
	"github.com/thelogbook/logbook/internal/foundation/errors"
	"github.com/thelogbook/logbook/internal/observability"
)

type loginRequest struct {
	OrgID string `json:"org_id"`
	Email string `json:"email"`
}

// handleLogin issues a session for an existing member. The deployment's
// SSO sits in front of this endpoint; integration settings captured
// during onboarding are stored, not exchanged here.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}

	member, err := s.deps.Store.GetMemberByEmail(r.Context(), req.OrgID, req.Email)
	if err != nil {
		s.Error(w, r, errors.AuthError("unknown member").Build())
		return
	}

	sess, err := s.deps.Sessions.Issue(r.Context(), member.ID, member.OrgID)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	http.SetCookie(w, auth.Cookie(sess))

	ctx := observability.WithMemberID(observability.WithOrgID(r.Context(), member.OrgID), member.ID)
	observability.InfoContext(ctx, "Member signed in")
	s.Success(w, http.StatusOK, member)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.CookieName); err == nil {
		_ = s.deps.Sessions.Revoke(r.Context(), c.Value)
	}
	http.SetCookie(w, auth.ClearCookie())
	s.Success(w, http.StatusOK, nil)
}

// sessionOrg returns the org the authenticated session belongs to.
func sessionOrg(r *http.Request) string {
	if sess, ok := auth.SessionFrom(r.Context()); ok {
		return sess.OrgID
	}
	return ""
}

// sessionMember returns the authenticated member's ID.
func sessionMember(r *http.Request) string {
	if sess, ok := auth.SessionFrom(r.Context()); ok {
		return sess.MemberID
	}
	return ""
}

// orgGuard hides rows held by another department: a lookup resolving
// outside the session's organization reports the same not-found a
// missing row does.
func orgGuard(r *http.Request, entityOrg, message string) error {
	if entityOrg != sessionOrg(r) {
		return errors.NotFoundError(message).Build()
	}
	return nil
}
