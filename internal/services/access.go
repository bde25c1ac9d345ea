package services

// ApprovalChecker is the slice of the user registry the policy needs.
type ApprovalChecker interface {
	IsApproved(id int64) bool
}

// AccessPolicy decides who may invoke what. There is a single statically
// configured owner; everyone else needs manual approval before the
// signal/result commands work.
type AccessPolicy struct {
	ownerID   int64
	approvals ApprovalChecker
}

func NewAccessPolicy(ownerID int64, approvals ApprovalChecker) *AccessPolicy {
	return &AccessPolicy{ownerID: ownerID, approvals: approvals}
}

func (p *AccessPolicy) IsOwner(id int64) bool {
	return id == p.ownerID
}

// AllowSignal gates the signal/result commands. The owner still needs
// approval like anyone else; ownership only unlocks admin commands.
func (p *AccessPolicy) AllowSignal(id int64) error {
	if !p.approvals.IsApproved(id) {
		return ErrAccessDenied
	}
	return nil
}

// AllowAdmin gates approve/reject/users/broadcast/setref.
func (p *AccessPolicy) AllowAdmin(id int64) error {
	if !p.IsOwner(id) {
		return ErrAccessDenied
	}
	return nil
}
