package domain

// Group agrupa empleados que pueden firmar en nombre de un mismo cargo o área.
type Group struct {
	Code        string
	Name        string
	Description string
	Members     []GroupMember
}

type GroupMember struct {
	MemberUserID string `json:"memberUserId"`
	DisplayCargo string `json:"displayCargo,omitempty"`
}
