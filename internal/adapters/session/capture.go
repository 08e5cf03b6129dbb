// Package session implements the browser-to-terminal cookie handoff: a
// short-lived localhost server the user posts document.cookie to from a
// logged-in tab, so the cookie material never has to be pasted through a
// shell history.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const maxCookiePayloadBytes = 1 << 16

var (
	ErrTokenMismatch  = errors.New("handoff token mismatch")
	ErrHandoffTimeout = errors.New("timed out waiting for cookie handoff")
	ErrMissingToken   = errors.New("handoff token is required")
)

// NewHandoffToken returns a random single-use token that ties a handoff
// request to the command invocation that started the server.
func NewHandoffToken() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

type HandoffServer struct {
	expectedToken string
	listener      net.Listener
	server        *http.Server
	resultCh      chan handoffResult
	resultOnce    sync.Once
	closeOnce     sync.Once
}

type handoffResult struct {
	cookies string
	err     error
}

func StartHandoffServer(listenAddr string, expectedToken string) (*HandoffServer, error) {
	if expectedToken == "" {
		return nil, ErrMissingToken
	}
	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen handoff server: %w", err)
	}

	h := &HandoffServer{
		expectedToken: expectedToken,
		listener:      listener,
		resultCh:      make(chan handoffResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/session/handoff", h.handleHandoff)

	h.server = &http.Server{Handler: mux}

	go func() {
		if serveErr := h.server.Serve(h.listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			h.trySendResult(handoffResult{err: serveErr})
		}
	}()

	return h, nil
}

// Endpoint returns the URL the browser snippet posts to.
func (h *HandoffServer) Endpoint() string {
	if tcpAddr, ok := h.listener.Addr().(*net.TCPAddr); ok {
		return fmt.Sprintf("http://localhost:%d/session/handoff", tcpAddr.Port)
	}
	return "http://localhost/session/handoff"
}

// Snippet returns the one-liner to paste into the logged-in tab's devtools
// console.
func (h *HandoffServer) Snippet() string {
	return fmt.Sprintf(
		`fetch(%q,{method:"POST",body:document.cookie}).then(r=>r.text()).then(console.log)`,
		h.Endpoint()+"?token="+h.expectedToken,
	)
}

func (h *HandoffServer) WaitForCookies(timeout time.Duration) (string, error) {
	defer func() { _ = h.Close() }()

	select {
	case result := <-h.resultCh:
		return result.cookies, result.err
	case <-time.After(timeout):
		return "", ErrHandoffTimeout
	}
}

func (h *HandoffServer) Close() error {
	var closeErr error
	h.closeOnce.Do(func() {
		closeErr = h.server.Close()
	})
	return closeErr
}

func (h *HandoffServer) handleHandoff(w http.ResponseWriter, r *http.Request) {
	// The posting page lives on the platform origin, so the browser treats
	// this as a cross-origin request.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "post only", http.StatusMethodNotAllowed)
		return
	}

	if token := r.URL.Query().Get("token"); token != h.expectedToken {
		h.trySendResult(handoffResult{err: ErrTokenMismatch})
		http.Error(w, "token mismatch", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCookiePayloadBytes))
	if err != nil {
		h.trySendResult(handoffResult{err: fmt.Errorf("read handoff body: %w", err)})
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}

	cookies := strings.TrimSpace(string(body))
	if !strings.Contains(cookies, "ct0=") {
		h.trySendResult(handoffResult{err: errors.New("payload is missing session cookies")})
		http.Error(w, "missing session cookies", http.StatusBadRequest)
		return
	}

	h.trySendResult(handoffResult{cookies: cookies})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Session captured. You can close this tab."))
}

func (h *HandoffServer) trySendResult(result handoffResult) {
	h.resultOnce.Do(func() {
		h.resultCh <- result
	})
}
