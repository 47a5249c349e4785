package config

import (
	"time"

	"github.com/Veraticus/sortsense/internal/model"
)

// Default values for settings not present in the configuration.
const (
	DefaultExtractTimeout   = 30 * time.Second
	DefaultMaxTextLength    = 2000
	DefaultStoredTextLength = 500
	DefaultDiscoveryDepth   = 3
	DefaultSampleSize       = 5
	DefaultCohesionShare    = 0.8
	DefaultVisionConfidence = 0.3
	DefaultVisionMaxWidth   = 1024
	DefaultVisionModel      = "gpt-4o-mini"
	DefaultTransactionLog   = "~/.local/share/sortsense/transactions.json"
	DefaultHistoryDB        = "~/.local/share/sortsense/history.db"
)

// DefaultCategories is the built-in category set in tie-break order.
var DefaultCategories = []model.Category{
	{
		ID:          "documents",
		Description: "Legal, Financial & Official Papers",
		Folder:      "documents",
		Keywords: []string{
			"invoice", "receipt", "payment", "transaction", "bank", "statement",
			"tax", "w-2", "w2", "1099", "paystub", "pay stub", "cheque", "check",
			"billing", "price", "total", "amount due", "balance", "purchase",
			"credit card", "debit", "venmo", "paypal", "salary", "wage",
			"visa", "passport", "immigration", "uscis", "green card", "citizenship",
			"birth certificate", "social security", "ssn", "drivers license",
			"national id", "contract", "agreement", "deed", "insurance",
			"mortgage", "utilities", "registration", "dmv", "vin",
		},
	},
	{
		ID:          "work",
		Description: "Career & Employment",
		Folder:      "work",
		Keywords: []string{
			"resume", "cv", "curriculum vitae", "career summary", "job application",
			"offer letter", "employment", "interview", "position", "cover letter",
			"professional experience", "job description", "work history",
			"references", "recommendation", "linkedin", "portfolio", "promotion",
			"performance review", "benefits", "onboarding",
		},
	},
	{
		ID:          "school",
		Description: "Education & Academic",
		Folder:      "school",
		Keywords: []string{
			"transcript", "degree", "diploma", "certificate", "university", "college",
			"course", "student", "academic", "gpa", "enrollment", "graduation",
			"school", "class", "semester", "credits", "scholarship", "syllabus",
			"assignment", "exam", "lecture", "professor", "homework", "thesis",
		},
	},
	{
		ID:          "health",
		Description: "Medical & Wellness",
		Folder:      "health",
		Keywords: []string{
			"medical", "health", "doctor", "hospital", "prescription", "patient",
			"diagnosis", "vaccination", "vaccine", "clinical", "fitness", "body scan",
			"lab results", "blood test", "pharmacy", "medicine", "therapy",
			"exercise", "workout", "physical", "dental", "copay", "deductible",
		},
	},
	{
		ID:          "housing",
		Description: "Home, Rent & Property",
		Folder:      "housing",
		Keywords: []string{
			"lease", "landlord", "tenant", "rent", "apartment", "hoa",
			"move-in", "move out", "security deposit", "property",
		},
	},
	{
		ID:          "photos",
		Description: "Pictures & Memories",
		Folder:      "photos",
		Keywords: []string{
			"photo", "image", "picture", "dsc", "img_", "jpeg", "screenshot",
			"selfie", "family", "friends", "vacation", "trip", "holiday", "birthday",
			"wedding", "party", "event", "memories", "album", "camera", "portrait",
		},
	},
	{
		ID:          "projects",
		Description: "Tech, Code & Creative Work",
		Folder:      "projects",
		Keywords: []string{
			"programming", "javascript", "python", "html", "css", "code", "github",
			"software", "developer", "api", "server", "database", "linux", "mysql",
			"docker", "kubernetes", "cloud", "aws", "azure", "git", "npm", "react",
			"nodejs", "typescript", "design", "project", "creative",
		},
	},
	{
		ID:          model.MiscID,
		Description: "Uncategorized Files",
		Folder:      "personal/misc",
	},
}

// DefaultVisionHints describes what each category looks like to the image
// classifier.
var DefaultVisionHints = map[string][]string{
	"photos": {
		"a photo of a person", "a selfie", "a family or group photo",
		"a portrait photograph", "people at a party or celebration",
		"a wedding photo", "vacation photos with people",
	},
	"documents": {
		"a receipt", "an invoice document", "a bank statement", "a bill",
		"a passport", "an ID card", "a visa document", "a contract or agreement",
	},
	"health": {
		"medical document or prescription", "health records",
		"x-ray or medical scan", "medicine or pills",
	},
	"school": {
		"a diploma or certificate", "academic transcript",
		"textbook or study materials", "classroom or lecture",
	},
	"projects": {
		"code or programming", "software interface", "technical diagram",
		"design mockup",
	},
	"work": {
		"resume or CV document", "office or workplace", "business meeting",
		"professional headshot",
	},
}

// DefaultForceMap maps directory names to the category they always belong to.
var DefaultForceMap = map[string]string{
	"dcim":        "photos",
	"camera roll": "photos",
	"screenshots": "photos",
	"photo booth": "photos",
}

// DefaultDenyList names directories that are never analyzed or moved.
var DefaultDenyList = []string{
	"node_modules", ".git", ".svn", ".hg", "__pycache__", ".venv", "venv",
	".cache", ".tox", ".mypy_cache", ".pytest_cache", "bower_components",
	".gradle", ".idea", ".vscode",
}

// DefaultExemptList names directories never treated as cohesive units.
var DefaultExemptList = []string{
	"statements", "invoices", "receipts", "bills", "paystubs", "taxes",
}

// DefaultFinancialCategories are the categories eligible for institution
// subfolders.
var DefaultFinancialCategories = []string{"documents", "finance"}
