package model

// Principal is the resolved caller identity for a request. How it was
// established (cookie, bearer token) is the transport layer's concern.
type Principal struct {
	VehicleNumber string
	AdminID       string
	IsAdmin       bool
}

func (p Principal) IsReviewer() bool {
	return p.IsAdmin
}

func (p Principal) IsOwner() bool {
	return p.VehicleNumber != ""
}
