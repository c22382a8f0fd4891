// Package authflow implements the telegram login in terminal.
package authflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"golang.org/x/term"
)

// FullAuthFlow is the user authenticator that can also request the API
// credentials.
type FullAuthFlow interface {
	auth.UserAuthenticator

	GetAPICredentials(ctx context.Context) (int, string, error)
}

var (
	ErrAborted  = errors.New("login aborted")
	ErrTimedOut = errors.New("operation timed out")
)

var (
	italic    = color.New(color.Italic)
	param     = color.New(color.Italic, color.FgBlue, color.BgHiWhite)
	warn      = color.New(color.FgHiRed)
	underline = color.New(color.Underline)

	line = strings.Repeat("-=", 40)
)

const defCodeTimeout = 30 * time.Minute

// noSignUp can be embedded to prevent signing up.
type noSignUp struct{}

func (noSignUp) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up is not supported, use the official client to create an account")
}

func (noSignUp) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

// TermAuth implements authentication via terminal.
type TermAuth struct {
	noSignUp

	phone string

	in  *bufio.Reader
	out io.Writer
	// readPass reads the password without echo.
	readPass func() (string, error)
}

// NewTermAuth returns the terminal authenticator.  If phone is not empty, it
// is used instead of asking the user.
func NewTermAuth(phone string) TermAuth {
	return TermAuth{
		phone:    phone,
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		readPass: readpass,
	}
}

func (a TermAuth) reader() *bufio.Reader {
	if a.in == nil {
		return bufio.NewReader(os.Stdin)
	}
	return a.in
}

func (a TermAuth) writer() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func (a TermAuth) password() (string, error) {
	if a.readPass == nil {
		return readpass()
	}
	return a.readPass()
}

func (a TermAuth) Phone(_ context.Context) (string, error) {
	if a.phone != "" {
		return a.phone, nil
	}
	fmt.Fprint(a.writer(), "Connected, please login to Telegram.\n\nEnter phone: ")
	return readln(a.reader())
}

func (a TermAuth) Password(_ context.Context) (string, error) {
	defer fmt.Fprintln(a.writer())
	fmt.Fprint(a.writer(), "Enter 2FA password (won't be shown): ")
	return a.password()
}

func (a TermAuth) Code(_ context.Context, code *tg.AuthSentCode) (string, error) {
	codeHelp, length := codeSpecifics(code)
	timeoutIn := codeTimeout(code)
	deadline := time.Now().Add(timeoutIn)

	for {
		if time.Now().After(deadline) {
			return "", ErrTimedOut
		}
		fmt.Fprintf(a.writer(), "(i) TIP: %s\nEnter code (within %s): ", codeHelp, timeoutIn)
		input, err := readln(a.reader())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrAborted
			}
			return "", err
		}
		if len(input) == length || length == 0 {
			return input, nil
		}
		fmt.Fprintln(a.writer(), "*** Invalid code, try again [Press Ctrl+C to abort] ***")
	}
}

func codeSpecifics(code *tg.AuthSentCode) (string, int) {
	digits := func(where string, n int) string {
		return fmt.Sprintf("The code %s.\nEnter exactly %d digits.", where, n)
	}

	switch val := code.Type.(type) {
	case *tg.AuthSentCodeTypeApp:
		return digits("was sent through the telegram app", val.GetLength()), val.GetLength()
	case *tg.AuthSentCodeTypeSMS:
		return digits("will be sent via a text message (SMS)", val.GetLength()), val.GetLength()
	case *tg.AuthSentCodeTypeCall:
		return digits("will be sent via a phone call", val.GetLength()), val.GetLength()
	case *tg.AuthSentCodeTypeFlashCall:
		return fmt.Sprintf("The code will be sent via a flash phone call.\nThe phone code is the phone number itself, matching the pattern: %q", val.GetPattern()), len(val.GetPattern())
	case *tg.AuthSentCodeTypeMissedCall:
		return fmt.Sprintf("The code will be sent via a missed call.\nEnter the last %d digits of the calling number, prefix: %s", val.GetLength(), val.GetPrefix()), val.GetLength()
	default:
		return "Unsupported code type, enter the code you received.", 0
	}
}

func codeTimeout(code *tg.AuthSentCode) time.Duration {
	timeout, ok := code.GetTimeout()
	if !ok || timeout <= 0 {
		return defCodeTimeout
	}
	return time.Duration(timeout) * time.Second
}

func (a TermAuth) GetAPICredentials(_ context.Context) (int, string, error) {
	a.instructions()
	var id int
	for {
		fmt.Fprintf(a.writer(), "Enter App '%s': ", param.Sprint(" api_id "))
		sID, err := readln(a.reader())
		if err != nil {
			return 0, "", err
		}
		id, err = strconv.Atoi(sID)
		if err == nil && id > 0 {
			break
		}
		fmt.Fprintln(a.writer(), "*** Input error: api_id should be a positive integer")
	}
	fmt.Fprintf(a.writer(), "Enter App '%s' (won't be shown): ", param.Sprint(" api_hash "))
	hash, err := a.password()
	fmt.Fprintln(a.writer())
	if err != nil {
		return 0, "", err
	}
	return id, hash, nil
}

func (a TermAuth) instructions() {
	w := a.writer()
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "To get the API ID and API Hash:\n\n"+
		"\t1.  Login to telegram \"API Development tools\": %s\n"+
		"\t2.  Fill in the form, %s and %s can be any values;\n"+
		"\t3.  Choose \"%s\" platform and click <Create Application>.\n\n",
		italic.Sprint("https://my.telegram.org/apps"),
		underline.Sprint("App title"), underline.Sprint("Short Name"), underline.Sprint("Desktop"))
	fmt.Fprintf(w, "The credentials are saved encrypted on this device, use -reset to delete them.\n")
	warn.Fprintf(w, "Keep the API hash secret, never share it with anyone.\n")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)
}

func readln(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readpass() (string, error) {
	stdin := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(stdin)
	if err != nil {
		return "", err
	}
	defer term.Restore(stdin, oldState)

	bytePwd, err := term.ReadPassword(stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytePwd)), nil
}
