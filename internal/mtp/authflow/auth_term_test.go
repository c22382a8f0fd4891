package authflow

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuth(input string) (TermAuth, *bytes.Buffer) {
	var out bytes.Buffer
	return TermAuth{
		in:       bufio.NewReader(strings.NewReader(input)),
		out:      &out,
		readPass: func() (string, error) { return "secret", nil },
	}, &out
}

func TestTermAuth_Phone(t *testing.T) {
	a, _ := testAuth("+1 555 0100\n")
	got, err := a.Phone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+1 555 0100", got)

	preset := NewTermAuth("+61")
	got, err = preset.Phone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "+61", got)
}

func TestTermAuth_Code(t *testing.T) {
	code := &tg.AuthSentCode{Type: &tg.AuthSentCodeTypeApp{Length: 5}}
	t.Run("retries on invalid length", func(t *testing.T) {
		a, out := testAuth("123\n12345\n")
		got, err := a.Code(context.Background(), code)
		require.NoError(t, err)
		assert.Equal(t, "12345", got)
		assert.Contains(t, out.String(), "Invalid code")
	})
	t.Run("eof aborts", func(t *testing.T) {
		a, _ := testAuth("")
		_, err := a.Code(context.Background(), code)
		assert.ErrorIs(t, err, ErrAborted)
	})
}

func TestTermAuth_GetAPICredentials(t *testing.T) {
	a, out := testAuth("abc\n-1\n12345\n")
	id, hash, err := a.GetAPICredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12345, id)
	assert.Equal(t, "secret", hash)
	assert.Equal(t, 2, strings.Count(out.String(), "Input error"))
}

func Test_codeSpecifics(t *testing.T) {
	tests := []struct {
		name string
		typ  tg.AuthSentCodeTypeClass
		want int
	}{
		{"app", &tg.AuthSentCodeTypeApp{Length: 5}, 5},
		{"sms", &tg.AuthSentCodeTypeSMS{Length: 6}, 6},
		{"call", &tg.AuthSentCodeTypeCall{Length: 4}, 4},
		{"flash call", &tg.AuthSentCodeTypeFlashCall{Pattern: "+7***"}, 5},
		{"missed call", &tg.AuthSentCodeTypeMissedCall{Prefix: "+7", Length: 3}, 3},
		{"unknown", &tg.AuthSentCodeTypeFragmentSMS{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			help, n := codeSpecifics(&tg.AuthSentCode{Type: tt.typ})
			assert.Equal(t, tt.want, n)
			assert.NotEmpty(t, help)
		})
	}
}

func Test_codeTimeout(t *testing.T) {
	assert.Equal(t, defCodeTimeout, codeTimeout(&tg.AuthSentCode{}))
	c := &tg.AuthSentCode{}
	c.SetTimeout(120)
	assert.Equal(t, 2*time.Minute, codeTimeout(c))
}

func Test_readln(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("  first  \nlast"))
	got, err := readln(r)
	require.NoError(t, err)
	assert.Equal(t, "first", got)
	got, err = readln(r)
	require.NoError(t, err)
	assert.Equal(t, "last", got)
	_, err = readln(r)
	assert.Error(t, err)
}
