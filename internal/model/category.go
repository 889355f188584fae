package model

// TaskCategory labels software development tasks.
type TaskCategory string

const (
	TaskBug           TaskCategory = "bug"
	TaskFeature       TaskCategory = "feature"
	TaskChore         TaskCategory = "chore"
	TaskDocumentation TaskCategory = "documentation"
	TaskRefactor      TaskCategory = "refactor"
	TaskGeneral       TaskCategory = "general"
)

// TaskCategories lists every task category in display order.
var TaskCategories = []TaskCategory{TaskBug, TaskFeature, TaskChore, TaskDocumentation, TaskRefactor, TaskGeneral}

func (c TaskCategory) Valid() bool {
	for _, v := range TaskCategories {
		if c == v {
			return true
		}
	}
	return false
}

// QuestCategory labels gamified quests.
type QuestCategory string

const (
	QuestCombat      QuestCategory = "combat"
	QuestHealing     QuestCategory = "healing"
	QuestExploration QuestCategory = "exploration"
	QuestCrafting    QuestCategory = "crafting"
	QuestDiplomacy   QuestCategory = "diplomacy"
	QuestDefault     QuestCategory = "default"
)

// QuestCategories lists every quest category in display order.
var QuestCategories = []QuestCategory{QuestCombat, QuestHealing, QuestExploration, QuestCrafting, QuestDiplomacy, QuestDefault}

func (c QuestCategory) Valid() bool {
	for _, v := range QuestCategories {
		if c == v {
			return true
		}
	}
	return false
}

type (
	Task  = Item[TaskCategory]
	Quest = Item[QuestCategory]
)

// Kind names a collection type.
type Kind string

const (
	KindTask  Kind = "task"
	KindQuest Kind = "quest"
)

// ParseKind accepts singular and plural spellings.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "task", "tasks", "":
		return KindTask, true
	case "quest", "quests":
		return KindQuest, true
	}
	return "", false
}
