// Package mail sends email. Callers depend on the Mail interface; SMTP is the
// only transport and is built on jordan-wright/email.
package mail
