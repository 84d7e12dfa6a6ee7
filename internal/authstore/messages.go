package authstore

// Human-readable translations of the auth backend's error codes, for display
// in the back-office forms.
var authErrorMessages = map[string]string{
	"auth/invalid-email":          "Adresse e-mail invalide.",
	"auth/user-disabled":          "Ce compte a été désactivé.",
	"auth/user-not-found":         "Aucun compte ne correspond à cette adresse e-mail.",
	"auth/wrong-password":         "Mot de passe incorrect.",
	"auth/email-already-in-use":   "Cette adresse e-mail est déjà utilisée.",
	"auth/weak-password":          "Le mot de passe doit contenir au moins 6 caractères.",
	"auth/too-many-requests":      "Trop de tentatives. Veuillez réessayer plus tard.",
	"auth/network-request-failed": "Problème de connexion réseau. Vérifiez votre connexion.",
	"auth/requires-recent-login":  "Veuillez vous reconnecter pour effectuer cette action.",
	"auth/invalid-credential":     "Identifiants invalides.",
	"auth/expired-action-code":    "Ce lien a expiré.",
	"auth/invalid-action-code":    "Ce lien est invalide ou a déjà été utilisé.",
	"auth/id-token-expired":       "Votre session a expiré. Veuillez vous reconnecter.",
	"auth/id-token-revoked":       "Votre session a été révoquée. Veuillez vous reconnecter.",
}

const unknownAuthError = "Une erreur est survenue. Veuillez réessayer."

// ErrorMessage translates an auth backend error code. Unknown codes fall back
// to a generic message.
func ErrorMessage(code string) string {
	if msg, ok := authErrorMessages[code]; ok {
		return msg
	}
	return unknownAuthError
}
