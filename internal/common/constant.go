package common

// AuthorizationHeaderName carries the bearer session token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// DefaultAvatar is the avatar reference given to users who never uploaded one.
const DefaultAvatar = "default_avatar.jpg"
