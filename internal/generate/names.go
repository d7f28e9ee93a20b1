package generate

// Name pools for synthesized profiles. First names are split by gender;
// last names are shared.
var (
	femaleFirstNames = []string{
		"Abigail", "Alexis", "Alice", "Amanda", "Amber", "Amy", "Andrea", "Angela",
		"Anna", "Ashley", "Barbara", "Betty", "Brenda", "Brittany", "Carol", "Caroline",
		"Catherine", "Charlotte", "Chloe", "Christina", "Christine", "Claire", "Cynthia", "Danielle",
		"Deborah", "Denise", "Diana", "Donna", "Dorothy", "Elizabeth", "Ella", "Emily",
		"Emma", "Evelyn", "Grace", "Hannah", "Heather", "Helen", "Isabella", "Jacqueline",
		"Janet", "Jennifer", "Jessica", "Joyce", "Julia", "Julie", "Karen", "Katherine",
		"Kathleen", "Kelly", "Kimberly", "Laura", "Lauren", "Linda", "Lisa", "Lucy",
		"Madison", "Margaret", "Maria", "Marie", "Megan", "Melissa", "Michelle", "Mia",
		"Nancy", "Natalie", "Nicole", "Olivia", "Pamela", "Patricia", "Rachel", "Rebecca",
		"Ruth", "Samantha", "Sandra", "Sarah", "Sharon", "Sophia", "Stephanie", "Susan",
		"Teresa", "Victoria", "Virginia", "Zoe",
	}

	maleFirstNames = []string{
		"Aaron", "Adam", "Alan", "Alexander", "Andrew", "Anthony", "Benjamin", "Brandon",
		"Brian", "Bruce", "Carl", "Charles", "Christopher", "Daniel", "David", "Dennis",
		"Donald", "Douglas", "Dylan", "Edward", "Eric", "Ethan", "Frank", "Gary",
		"George", "Gregory", "Harry", "Henry", "Jack", "Jacob", "James", "Jason",
		"Jeffrey", "Jeremy", "Jerry", "John", "Jonathan", "Jordan", "Joseph", "Joshua",
		"Justin", "Keith", "Kenneth", "Kevin", "Kyle", "Larry", "Liam", "Logan",
		"Mark", "Matthew", "Michael", "Nathan", "Nicholas", "Noah", "Oliver", "Oscar",
		"Patrick", "Paul", "Peter", "Raymond", "Richard", "Robert", "Roger", "Ryan",
		"Samuel", "Scott", "Sean", "Stephen", "Steven", "Thomas", "Timothy", "Tyler",
		"Walter", "William", "Zachary",
	}

	lastNames = []string{
		"Adams", "Allen", "Anderson", "Bailey", "Baker", "Barnes", "Bell", "Bennett",
		"Brooks", "Brown", "Butler", "Campbell", "Carter", "Clark", "Collins", "Cook",
		"Cooper", "Cox", "Davies", "Davis", "Edwards", "Evans", "Fisher", "Foster",
		"Garcia", "Gonzalez", "Gray", "Green", "Hall", "Harris", "Hernandez", "Hill",
		"Howard", "Hughes", "Jackson", "James", "Jenkins", "Johnson", "Jones", "Kelly",
		"King", "Lee", "Lewis", "Lopez", "MacDonald", "Martin", "Martinez", "Miller",
		"Mitchell", "Moore", "Morgan", "Morris", "Murphy", "Nelson", "Parker", "Perez",
		"Peterson", "Phillips", "Price", "Reed", "Richardson", "Roberts", "Robinson", "Rogers",
		"Ross", "Sanchez", "Scott", "Smith", "Stewart", "Sullivan", "Taylor", "Thomas",
		"Thompson", "Tremblay", "Turner", "Walker", "Ward", "Watson", "White", "Williams",
		"Wilson", "Wood", "Wright", "Young",
	}
)
