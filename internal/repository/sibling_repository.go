package repository

import (
	"curriculum_backend/internal/util"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SiblingSet 描述一层兄弟节点：子表与指向父节点的列
type SiblingSet struct {
	Level       string
	Table       string
	ParentCol   string
	ParentTable string
}

var (
	UnitsOfCourse     = SiblingSet{Level: "unit", Table: "course_units", ParentCol: "course_id", ParentTable: "courses"}
	LessonsOfUnit     = SiblingSet{Level: "lesson", Table: "lessons", ParentCol: "unit_id", ParentTable: "course_units"}
	QuestionsOfLesson = SiblingSet{Level: "question", Table: "quiz_questions", ParentCol: "lesson_id", ParentTable: "lessons"}
	OptionsOfQuestion = SiblingSet{Level: "option", Table: "quiz_options", ParentCol: "question_id", ParentTable: "quiz_questions"}
)

func (s SiblingSet) scope(db *gorm.DB, parentID uint) *gorm.DB {
	return db.Table(s.Table).Where(s.ParentCol+" = ?", parentID)
}

// LockParent 锁住父节点行，串行化同一兄弟集合上的写操作
func (r *CurriculumRepository) LockParent(set SiblingSet, parentID uint) error {
	var ids []uint
	q := r.DB.Table(set.ParentTable).Where("id = ?", parentID)
	// SQLite 不支持行锁，整库写锁已足够
	if r.DB.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *CurriculumRepository) CountSiblings(set SiblingSet, parentID uint) (int, error) {
	var n int64
	if err := set.scope(r.DB, parentID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// SiblingIDs 按 order_index 升序返回兄弟节点 ID
func (r *CurriculumRepository) SiblingIDs(set SiblingSet, parentID uint) ([]uint, error) {
	var ids []uint
	err := set.scope(r.DB, parentID).Order("order_index ASC, id ASC").Pluck("id", &ids).Error
	return ids, err
}

// CloseGap 删除后将排在被删节点之后的兄弟前移一位
func (r *CurriculumRepository) CloseGap(set SiblingSet, parentID uint, removedIndex int) error {
	return set.scope(r.DB, parentID).
		Where("order_index > ?", removedIndex).
		UpdateColumn("order_index", gorm.Expr("order_index - 1")).Error
}

// ApplyOrder 用单条 UPDATE ... CASE 把 order_index 改写为 ids 中的位置
func (r *CurriculumRepository) ApplyOrder(set SiblingSet, parentID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("CASE id")
	for i, id := range ids {
		sb.WriteString(" WHEN ")
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
		sb.WriteString(" THEN ")
		sb.WriteString(strconv.Itoa(i))
	}
	sb.WriteString(" ELSE order_index END")

	return set.scope(r.DB, parentID).
		Where("id IN ?", ids).
		UpdateColumn("order_index", gorm.Expr(sb.String())).Error
}

// AssertContiguous 校验兄弟集合的 order_index 恰好是 0..n-1
func (r *CurriculumRepository) AssertContiguous(set SiblingSet, parentID uint) error {
	var indexes []int
	if err := set.scope(r.DB, parentID).Order("order_index ASC").Pluck("order_index", &indexes).Error; err != nil {
		return err
	}
	for i, idx := range indexes {
		if idx != i {
			return util.Invariantf("%s siblings under %s=%d are not contiguous: %v", set.Level, set.ParentCol, parentID, indexes)
		}
	}
	return nil
}
