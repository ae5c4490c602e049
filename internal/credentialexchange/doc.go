// credentialexchange
//
// Handles the main flow for exchanging a SAML assertion for AWS temporary creds.
//
// Covers role resolution from the parsed assertion, the STS AssumeRoleWithSAML
// exchange with session duration clamping against the role maximum, and the
// session validity decision over previously persisted credentials.
package credentialexchange
