package shifts

import (
	"github.com/DevN0mad/ShiftBot/internal/models"
)

var (
	workingListNames = []string{"day", "first_shift", "night"}
	leaveListNames   = []string{"vacation", "l4"}
)

// Conflicts находит техников, которые в один день стоят в рабочем списке
// и в отпуске или на больничном. Данные не отклоняются, только сообщаются.
func Conflicts(records []models.ShiftRecord) []models.Conflict {
	var conflicts []models.Conflict

	for _, rec := range records {
		leave := make(map[string]string)
		for i, list := range rec.LeaveLists() {
			for _, name := range list {
				if _, ok := leave[name]; !ok {
					leave[name] = leaveListNames[i]
				}
			}
		}
		if len(leave) == 0 {
			continue
		}

		reported := make(map[string]bool)
		for i, list := range rec.WorkingLists() {
			for _, name := range list {
				l, ok := leave[name]
				if !ok || reported[name] {
					continue
				}
				reported[name] = true
				conflicts = append(conflicts, models.Conflict{
					Date:    rec.Date.Format(models.DateLayout),
					Name:    name,
					Working: workingListNames[i],
					Leave:   l,
				})
			}
		}
	}

	return conflicts
}
