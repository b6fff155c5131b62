package service

import "github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/notify"

const WarningEmailDisabled = "email delivery not configured"

// Delivery reports what became of an outbound email. Neither a skip nor a
// failure undoes the change that triggered the email.
type Delivery struct {
	Sent    bool
	Skipped bool
	Warning string
}

func deliveryOf(res notify.Result, failed string) Delivery {
	switch {
	case res.Err != nil:
		return Delivery{Warning: failed}
	case res.Skipped:
		return Delivery{Skipped: true, Warning: WarningEmailDisabled}
	}
	return Delivery{Sent: res.Success}
}
