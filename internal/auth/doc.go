// Package auth provides API authentication and authorisation for PowerCore.
//
// It implements a 3-tier role model (viewer → operator → admin) carried
// in short-lived HS256 JWT access tokens:
//   - viewer: read device power state and transition history
//   - operator: request resume/suspend on individual devices
//   - admin: trigger system-wide suspend/resume
//
// Tokens are minted out of band (operator tooling, provisioning scripts)
// with GenerateAccessToken and validated per request with ParseToken.
// There is no user store; the subject claim identifies the calling tool.
package auth
