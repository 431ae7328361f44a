// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package access

import (
	"strings"
)

// claim names used by the identity provider
const (
	claimEmail        = "email"
	claimSubject      = "sub"
	claimGroups       = "groups"
	claimCognitoGroup = "cognito:groups"
)

// NormalizeGroups turns the group claim into a list. The claim arrives in different
// encodings depending on the authorizer: as a list, as a single string, as a comma
// separated string, or as a stringified list like "[Admin Editors]". Anything else,
// including nil, yields an empty list.
func NormalizeGroups(raw interface{}) []string {
	var groups []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			groups = append(groups, s)
		}
	}

	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			s = s[1 : len(s)-1]
			for _, g := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
				add(g)
			}
			break
		}
		for _, g := range strings.Split(s, ",") {
			add(g)
		}
	case []string:
		for _, g := range v {
			add(g)
		}
	case []interface{}:
		for _, g := range v {
			if s, ok := g.(string); ok {
				add(s)
			}
		}
	}
	return groups
}

// ClaimsFromMap reads the claims from a decoded claim set
func ClaimsFromMap(m map[string]interface{}) Claims {
	c := Claims{}
	if m == nil {
		return c
	}
	c.Email, _ = m[claimEmail].(string)
	c.Subject, _ = m[claimSubject].(string)
	if raw, ok := m[claimCognitoGroup]; ok {
		c.Groups = NormalizeGroups(raw)
	} else {
		c.Groups = NormalizeGroups(m[claimGroups])
	}
	return c
}

// ClaimsFromAuthorizer extracts the claims from the authorizer context of an API
// gateway request. The claims sit under "claims" for user pool authorizers, under
// "jwt.claims" for JWT authorizers of HTTP APIs, and at the top level for lambda
// authorizers.
func ClaimsFromAuthorizer(authorizer map[string]interface{}) Claims {
	if authorizer == nil {
		return Claims{}
	}
	if m, ok := authorizer["claims"].(map[string]interface{}); ok {
		return ClaimsFromMap(m)
	}
	if j, ok := authorizer["jwt"].(map[string]interface{}); ok {
		if m, ok := j["claims"].(map[string]interface{}); ok {
			return ClaimsFromMap(m)
		}
	}
	return ClaimsFromMap(authorizer)
}
