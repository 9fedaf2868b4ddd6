package lastfm

import (
	"context"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

// AuthCallbackPort is where StartAuthServer waits for Last.fm's redirect.
const AuthCallbackPort = 9847

// AuthServer receives the token Last.fm appends to the callback URL once
// the user has authorized the application.
type AuthServer struct {
	srv    *http.Server
	addr   net.Addr
	tokens chan string
	done   chan struct{}
}

// StartAuthServer listens on AuthCallbackPort on the loopback interface.
func StartAuthServer() (*AuthServer, error) {
	return startAuthServer(fmt.Sprintf("127.0.0.1:%d", AuthCallbackPort))
}

func startAuthServer(addr string) (*AuthServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	as := &AuthServer{
		addr:   ln.Addr(),
		tokens: make(chan string, 1),
		done:   make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", as.handleCallback)
	as.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = as.srv.Serve(ln)
		close(as.done)
	}()
	return as, nil
}

func (as *AuthServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if token == "" {
		w.WriteHeader(http.StatusBadRequest)
		writePage(w, "Authorization failed", "No token was received. Run wavesplay lastfm link again.")
		return
	}
	writePage(w, "Last.fm linked", "You can close this window and return to your terminal.")

	// First token wins.
	select {
	case as.tokens <- token:
	default:
	}
}

func writePage(w io.Writer, title, body string) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>wavesplay - %[1]s</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>%[1]s</h1>
<p>%[2]s</p>
</body>
</html>`, html.EscapeString(title), html.EscapeString(body))
}

// TokenChan returns the channel that receives the auth token.
func (as *AuthServer) TokenChan() <-chan string {
	return as.tokens
}

// Shutdown stops the server and waits for it to exit.
func (as *AuthServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = as.srv.Shutdown(ctx)
	<-as.done
}

// WaitForToken waits for the callback token until timeout or ctx is
// done. An empty token means the user did not authorize in time.
func WaitForToken(ctx context.Context, tokens <-chan string, timeout time.Duration) string {
	select {
	case token := <-tokens:
		return token
	case <-time.After(timeout):
		return ""
	case <-ctx.Done():
		return ""
	}
}

// CallbackURL is the redirect target served by StartAuthServer.
func CallbackURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", AuthCallbackPort)
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "linux", "freebsd", "openbsd":
		name = "xdg-open"
	case "windows":
		name, args = "cmd", []string{"/c", "start"}
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return exec.Command(name, append(args, url)...).Start()
}
