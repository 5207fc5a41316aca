package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeGetter is a minimal Getter stub.
type fakeGetter struct {
	val   string
	err   error
	calls int
	names []string
}

func (f *fakeGetter) GetParameter(_ context.Context, name string) (string, error) {
	f.calls++
	f.names = append(f.names, name)
	return f.val, f.err
}

func TestTokenParameterName(t *testing.T) {
	require.Equal(t, "/tienda/open-ai-token", TokenParameterName("/tienda"))
	require.Equal(t, "/tienda/open-ai-token", TokenParameterName(" /tienda/ "))
}

func TestFetchToken(t *testing.T) {
	cases := []struct {
		name    string
		getter  Getter
		param   string
		want    string
		wantErr string
	}{
		{name: "json token", getter: &fakeGetter{val: `{"token":"sk-from-json"}`}, param: "/p/open-ai-token", want: "sk-from-json"},
		{name: "missing token field", getter: &fakeGetter{val: `{"other":"value"}`}, param: "/p/open-ai-token", wantErr: "API token is empty"},
		{name: "malformed json", getter: &fakeGetter{val: `{"broken`}, param: "/p/open-ai-token", wantErr: "unmarshal"},
		{name: "getter error", getter: &fakeGetter{err: errors.New("ssm unavailable")}, param: "/p/open-ai-token", wantErr: "ssm unavailable"},
		{name: "nil getter", getter: nil, param: "/p/open-ai-token", wantErr: "nil"},
		{name: "empty name", getter: &fakeGetter{val: `{"token":"x"}`}, param: " ", wantErr: "empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FetchToken(context.Background(), tc.getter, tc.param)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolveToken_PrefersEnvironment(t *testing.T) {
	g := &fakeGetter{val: `{"token":"sk-from-ssm"}`}
	tok, err := ResolveToken(context.Background(), " sk-env ", g, "/tienda")
	require.NoError(t, err)
	require.Equal(t, "sk-env", tok)
	require.Zero(t, g.calls)
}

func TestResolveToken_FallsBackToParameterStore(t *testing.T) {
	g := &fakeGetter{val: `{"token":"sk-from-ssm"}`}
	tok, err := ResolveToken(context.Background(), "", g, "/tienda")
	require.NoError(t, err)
	require.Equal(t, "sk-from-ssm", tok)
	require.Equal(t, []string{"/tienda/open-ai-token"}, g.names)
}

func TestResolveToken_NothingConfigured(t *testing.T) {
	_, err := ResolveToken(context.Background(), "", nil, "")
	require.ErrorContains(t, err, "no API token")

	_, err = ResolveToken(context.Background(), "", &fakeGetter{}, " ")
	require.ErrorContains(t, err, "no API token")
}
