// Package auth stores the FRED API key outside the config file.
//
// Manager walks a chain of KeyStore backends: the system keychain
// (go-keyring), an encrypted file under the user config directory, and a
// read-only view of FREDCAT_API_KEY / FRED_API_KEY.
package auth
