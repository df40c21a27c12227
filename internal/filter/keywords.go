package filter

// DefaultKeywords are searched when the config names none.
var DefaultKeywords = []string{
	"automation",
	"entry level",
	"associate",
	"admin",
	"operations",
}

// DefaultRelatedTerms extends each default keyword with phrases that show up
// in titles and descriptions of the same kind of role.
var DefaultRelatedTerms = map[string][]string{
	"automation": {
		"zapier", "make.com", "integromat", "workflow", "n8n", "ghl", "gohighlevel",
		"no-code", "low-code", "crm", "api integration", "scripting",
	},
	"entry level": {
		"entry-level", "junior", "trainee", "fresh graduate", "no experience",
		"beginner", "will train",
	},
	"associate": {
		"assistant", "coordinator", "specialist", "support",
	},
	"admin": {
		"administrative", "administrator", "virtual assistant", "data entry",
		"back office", "executive assistant", "clerical",
	},
	"operations": {
		"project coordinator", "process", "logistics", "project manager",
		"operations manager",
	},
}

// DefaultExcludeKeywords veto a posting regardless of keyword hits.
var DefaultExcludeKeywords = []string{
	"call center",
	"telemarketing",
	"telemarketer",
	"cold caller",
	"cold calling",
	"appointment setter",
}
