package domain

// Onboarding bonus amounts credited once per account on activation
const (
	UserSignupBonus  float64 = 40
	AgentSignupBonus float64 = 10000
)

// SignupBonus returns the one-time onboarding credit for role.
// ok is false for roles that never receive a bonus.
func SignupBonus(role Role) (amount float64, ok bool) {
	switch role {
	case RoleUser:
		return UserSignupBonus, true
	case RoleAgent:
		return AgentSignupBonus, true
	}
	return 0, false
}

// EffectiveRole is the role the account will hold once patch is merged
func EffectiveRole(u *User, patch *UserPatch) Role {
	if patch != nil && patch.Role != nil {
		return *patch.Role
	}
	return u.Role
}
