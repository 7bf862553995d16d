package dto

// DepositRequest sets or overwrites the fee amount.
type DepositRequest struct {
	Amount float64 `json:"amount"`
}

// AppointmentRequest schedules the solemnisation appointment.
type AppointmentRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}
