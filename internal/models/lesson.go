package models

// MainActivity is one row of the lesson plan's main-activities table.
type MainActivity struct {
	LearningObjective string `json:"learningObjective"`
	TeacherStrategy   string `json:"teacherStrategy"`
	StudentActivity   string `json:"studentActivity"`
	Assessment        string `json:"assessment"`
	Time              string `json:"time"` // free text, e.g. "10 mins"
}

// StarterActivity opens the lesson.
type StarterActivity struct {
	Activity string `json:"activity"`
	Time     string `json:"time"`
}

// ResourceChecklist marks which classroom resources the plan calls for.
type ResourceChecklist struct {
	SmartBoard        bool   `json:"smartBoard"`
	Worksheet         bool   `json:"worksheet"`
	Presentations     bool   `json:"presentations"`
	DataShow          bool   `json:"dataShow"`
	PhotoAndCards     bool   `json:"photoAndCards"`
	Manipulative      bool   `json:"manipulative"`
	OtherResource     bool   `json:"otherResource"`
	OtherResourceText string `json:"otherResourceText"`
}

// StrategyChecklist marks the teaching strategies the lesson uses.
type StrategyChecklist struct {
	DirectTeaching      bool   `json:"directTeaching"`
	CooperativeLearning bool   `json:"cooperativeLearning"`
	ProblemSolving      bool   `json:"problemSolving"`
	Discussion          bool   `json:"discussion"`
	LearningStation     bool   `json:"learningStation"`
	Modeling            bool   `json:"modeling"`
	HandsOnActivity     bool   `json:"handsOnActivity"`
	Photo               bool   `json:"photo"`
	Software            bool   `json:"software"`
	Brainstorming       bool   `json:"brainstorming"`
	RolePlay            bool   `json:"rolePlay"`
	OtherStrategy       bool   `json:"otherStrategy"`
	OtherStrategyText   string `json:"otherStrategyText"`
}

// LessonPlan is the structured daily lesson-plan form. Only a subset drives
// the classroom runtime (starter, mainActivities, closure); the rest is
// carried for deck generation and export.
type LessonPlan struct {
	AcademicYear     string            `json:"academicYear"`
	TeacherName      string            `json:"teacherName"`
	Grade            string            `json:"grade"`
	Date             string            `json:"date"`
	Day              string            `json:"day"`
	Subject          string            `json:"subject"`
	Unit             string            `json:"unit"`
	LessonTitle      string            `json:"lessonTitle"`
	LearningOutcomes string            `json:"learningOutcomes"`
	MainResource     string            `json:"mainResource"`
	Supporting       string            `json:"supportingResources"`
	Resources        ResourceChecklist `json:"resources"`
	Strategies       StrategyChecklist `json:"strategies"`
	Starter          StarterActivity   `json:"starter"`
	MainActivities   []MainActivity    `json:"mainActivities"`
	Closure          string            `json:"closure"`
	Assignments      string            `json:"assignments"`
	Values           string            `json:"nationalAndEducationalValues"`
	Integration      string            `json:"integration"`
	SelfReflection   string            `json:"selfReflection"`
}
