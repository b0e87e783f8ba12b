package payroll

import "errors"

var ErrNotFound = errors.New("payroll not found")
