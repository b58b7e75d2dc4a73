// Package authz builds the role based casbin enforcer used by admin
// endpoints. Policies are held in memory.
package authz

import (
	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// DefaultPolicies grants admins read and write on users.
var DefaultPolicies = [][]string{
	{"admin", "users", "read"},
	{"admin", "users", "write"},
}

// New returns an enforcer loaded with policies, or DefaultPolicies when none
// are given.
func New(policies ...[]string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if len(policies) == 0 {
		policies = DefaultPolicies
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, err
	}

	return e, nil
}
