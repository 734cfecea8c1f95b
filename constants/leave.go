package constants

// LeaveType is a leave balance category.
type LeaveType string

const (
	LeaveAnnual LeaveType = "annual"
	LeaveSick   LeaveType = "sick"
	LeaveFamily LeaveType = "family"
)

// LeaveTypes is the initialization order for new employees.
var LeaveTypes = []LeaveType{LeaveAnnual, LeaveSick, LeaveFamily}

// DefaultLeaveDays holds the yearly allocation per leave type.
var DefaultLeaveDays = map[LeaveType]float64{
	LeaveAnnual: 21,
	LeaveSick:   10,
	LeaveFamily: 3,
}
