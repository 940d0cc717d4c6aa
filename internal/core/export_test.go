package core

import "time"

// SetClock fixes the time an InvoiceService sees as "now".
func SetClock(s InvoiceService, now func() time.Time) {
	s.(*invoiceService).now = now
}
