package client

import (
	paymentdomain "github.com/chikoro/feeledger/internal/payment/domain"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
)

// The fallback view shown while the backend is down. Enough to keep the fee
// office screens populated; real data replaces it on the next clean refresh.

func fallbackStudents() []studentdomain.Student {
	return []studentdomain.Student{
		{
			ID:            "1",
			Name:          "John Doe",
			Class:         "Grade 10A",
			GuardianName:  "Jane Doe",
			GuardianPhone: "+263 77 123 4567",
			GuardianEmail: "jane.doe@email.com",
			Balance:       150,
			LastPayment:   "2024-01-15",
			Status:        studentdomain.StatusPending,
		},
		{
			ID:            "2",
			Name:          "Sarah Smith",
			Class:         "Grade 9B",
			GuardianName:  "Mike Smith",
			GuardianPhone: "+263 77 234 5678",
			GuardianEmail: "mike.smith@email.com",
			Balance:       0,
			LastPayment:   "2024-01-20",
			Status:        studentdomain.StatusPaid,
		},
		{
			ID:            "3",
			Name:          "David Johnson",
			Class:         "Grade 11A",
			GuardianName:  "Lisa Johnson",
			GuardianPhone: "+263 77 345 6789",
			GuardianEmail: "lisa.johnson@email.com",
			Balance:       200,
			LastPayment:   "2024-01-10",
			Status:        studentdomain.StatusOverdue,
		},
	}
}

func fallbackPayments() []paymentdomain.Payment {
	return []paymentdomain.Payment{
		{
			ID:            "1",
			StudentID:     "2",
			StudentName:   "Sarah Smith",
			Amount:        150,
			PaymentMethod: paymentdomain.MethodEcocash,
			Reference:     "ECO123456",
			Description:   "School Fees - January 2024",
			Date:          "2024-01-20",
			RecordedBy:    "Admin",
			ReceiptNumber: "RCP-001",
			Status:        paymentdomain.StatusCompleted,
		},
		{
			ID:            "2",
			StudentID:     "1",
			StudentName:   "John Doe",
			Amount:        100,
			PaymentMethod: paymentdomain.MethodCash,
			Description:   "School Fees - January 2024",
			Date:          "2024-01-15",
			RecordedBy:    "Admin",
			ReceiptNumber: "RCP-002",
			Status:        paymentdomain.StatusCompleted,
		},
	}
}
