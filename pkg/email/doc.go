// Package email abstracts outbound transactional mail behind a single
// EmailSender interface.
//
// Two backends are provided: a Postmark client for production delivery and a
// DevSender that writes the message to the application log so verification
// links can be followed without a mail server during development. Backend
// selection is configuration, not code; callers only ever see EmailSender.
package email
