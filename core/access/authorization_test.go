package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeGroups(t *testing.T) {
	testCases := []struct {
		name     string
		raw      interface{}
		expected []string
	}{
		{name: "nil", raw: nil, expected: nil},
		{name: "empty string", raw: "", expected: nil},
		{name: "single", raw: "Admin", expected: []string{"Admin"}},
		{name: "comma separated", raw: "Admin, X", expected: []string{"Admin", "X"}},
		{name: "comma separated with blanks", raw: " ,Admin,, X ,", expected: []string{"Admin", "X"}},
		{name: "stringified list", raw: "[Admin Editors]", expected: []string{"Admin", "Editors"}},
		{name: "stringified list with commas", raw: "[Admin, Editors]", expected: []string{"Admin", "Editors"}},
		{name: "string slice", raw: []string{"Admin", "X"}, expected: []string{"Admin", "X"}},
		{name: "interface slice", raw: []interface{}{"Admin", 42, " X "}, expected: []string{"Admin", "X"}},
		{name: "number", raw: 7, expected: nil},
		{name: "map", raw: map[string]interface{}{"Admin": true}, expected: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeGroups(tc.raw))
		})
	}
}

func TestResolveLevel(t *testing.T) {
	testCases := []struct {
		name     string
		raw      interface{}
		expected Level
	}{
		{name: "array with admin", raw: []interface{}{"Admin", "X"}, expected: Admin},
		{name: "comma string with admin", raw: "Admin, X", expected: Admin},
		{name: "single standard", raw: "standard", expected: Standard},
		{name: "absent", raw: nil, expected: Standard},
		{name: "lower case admin", raw: "admin", expected: Standard},
		{name: "admin as substring", raw: "Administrators", expected: Standard},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level := ResolveLevel(Claims{Groups: NormalizeGroups(tc.raw)})
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestLevel_Names(t *testing.T) {
	assert.Equal(t, "admin", Admin.String())
	assert.Equal(t, "full", Admin.AccessLevel())
	assert.True(t, Admin.IsAdmin())
	assert.Equal(t, "standard", Standard.String())
	assert.Equal(t, "limited", Standard.AccessLevel())
	assert.False(t, Standard.IsAdmin())
}

func TestClaimsFromAuthorizer(t *testing.T) {
	testCases := []struct {
		name       string
		authorizer map[string]interface{}
		expected   Claims
	}{
		{
			name:       "nil",
			authorizer: nil,
			expected:   Claims{},
		},
		{
			name: "user pool authorizer",
			authorizer: map[string]interface{}{
				"claims": map[string]interface{}{
					"email":          "jane@example.com",
					"sub":            "1234",
					"cognito:groups": "Admin,Editors",
				},
			},
			expected: Claims{Email: "jane@example.com", Subject: "1234", Groups: []string{"Admin", "Editors"}},
		},
		{
			name: "jwt authorizer",
			authorizer: map[string]interface{}{
				"jwt": map[string]interface{}{
					"claims": map[string]interface{}{
						"email":          "joe@example.com",
						"cognito:groups": "[Admin]",
					},
				},
			},
			expected: Claims{Email: "joe@example.com", Groups: []string{"Admin"}},
		},
		{
			name: "lambda authorizer",
			authorizer: map[string]interface{}{
				"email":  "max@example.com",
				"groups": []interface{}{"Users"},
			},
			expected: Claims{Email: "max@example.com", Groups: []string{"Users"}},
		},
		{
			name: "malformed values",
			authorizer: map[string]interface{}{
				"claims": map[string]interface{}{
					"email":          42,
					"cognito:groups": map[string]interface{}{},
				},
			},
			expected: Claims{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClaimsFromAuthorizer(tc.authorizer))
		})
	}
}

func TestClaimsFromBearer(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":          "jane@example.com",
		"cognito:groups": []string{"Admin"},
	})
	signed, err := token.SignedString([]byte("local"))
	require.NoError(t, err)

	c := ClaimsFromBearer("Bearer " + signed)
	assert.Equal(t, "jane@example.com", c.Email)
	assert.Equal(t, []string{"Admin"}, c.Groups)
	assert.Equal(t, Admin, ResolveLevel(c))

	for _, header := range []string{"", "Bearer ", "null", "Bearer not.a.token", "garbage"} {
		c := ClaimsFromBearer(header)
		assert.Equal(t, Claims{}, c, header)
		assert.Equal(t, Standard, ResolveLevel(c), header)
	}
}

func TestUnverifiedClaimsMiddleware(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":  "joe@example.com",
		"groups": "Users",
	}).SignedString([]byte("local"))
	require.NoError(t, err)

	var got Claims
	h := NewUnverifiedClaimsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClaimsFromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/data", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, Claims{Email: "joe@example.com", Groups: []string{"Users"}}, got)
}

func TestClaimsFromContext_Missing(t *testing.T) {
	c := ClaimsFromContext(context.Background())
	assert.Equal(t, Claims{}, c)
	assert.Equal(t, Standard, ResolveLevel(c))
}
